package auth

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"beizuri/db"
	"beizuri/globals"
	"beizuri/middleware"
	"beizuri/models"
	"beizuri/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

const accessTokenTTL = 12 * time.Hour

func loginHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	if input.Username == "" || input.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	var storedUser models.User
	err := db.UserCollection.FindOne(context.TODO(), bson.M{"username": input.Username}).Decode(&storedUser)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	if !storedUser.IsActive {
		utils.RespondWithError(w, http.StatusUnauthorized, "Account is disabled")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedUser.PasswordHash), []byte(input.Password)); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	tokenString, err := generateAccessToken(storedUser)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	_, err = db.UserCollection.UpdateOne(
		context.TODO(),
		bson.M{"userid": storedUser.UserID},
		bson.M{"$set": bson.M{"last_login": time.Now()}},
	)
	if err != nil {
		log.Printf("Failed to stamp last login for %s: %v", storedUser.Username, err)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"token":   tokenString,
		"user": utils.M{
			"userid":   storedUser.UserID,
			"username": storedUser.Username,
			"name":     storedUser.FullName(),
			"role":     storedUser.Role,
		},
	})
}

func registerHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username  string   `json:"username"`
		Password  string   `json:"password"`
		FirstName string   `json:"first_name"`
		LastName  string   `json:"last_name"`
		Phone     string   `json:"phone_number"`
		Role      []string `json:"role"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	if input.Username == "" || len(input.Password) < 6 {
		utils.RespondWithError(w, http.StatusBadRequest, "Username and a password of at least 6 characters are required")
		return
	}

	count, err := db.UserCollection.CountDocuments(context.TODO(), bson.M{"username": input.Username})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to check username")
		return
	}
	if count > 0 {
		utils.RespondWithError(w, http.StatusConflict, "Username already taken")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	role := input.Role
	if len(role) == 0 {
		role = []string{models.RoleCashier}
	}

	user := models.User{
		UserID:       uuid.NewString(),
		Username:     input.Username,
		PasswordHash: string(hash),
		Role:         role,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PhoneNumber:  input.Phone,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}

	if _, err := db.UserCollection.InsertOne(context.TODO(), user); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"success": true,
		"userid":  user.UserID,
	})
}

func generateAccessToken(user models.User) (string, error) {
	claims := middleware.Claims{
		Username: user.Username,
		UserID:   user.UserID,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(globals.JwtSecret)
}
