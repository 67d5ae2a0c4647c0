package settings

import (
	"context"
	"encoding/json"
	"net/http"

	"beizuri/db"
	"beizuri/globals"
	"beizuri/models"
	"beizuri/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func defaultSettings(userID string) models.UserSettings {
	return models.UserSettings{
		UserID:        userID,
		Theme:         "light",
		Notifications: true,
		Language:      "english",
		TimeZone:      "Africa/Nairobi",
	}
}

// GetUserSettings returns the caller's settings, creating defaults on first use.
func GetUserSettings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := r.Context().Value(globals.UserIDKey).(string)

	var userSettings models.UserSettings
	err := db.SettingsCollection.FindOne(context.TODO(), bson.M{"userID": userID}).Decode(&userSettings)
	if err == mongo.ErrNoDocuments {
		userSettings = defaultSettings(userID)
		_, _ = db.SettingsCollection.InsertOne(context.TODO(), userSettings)
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "settings": userSettings})
}

// UpdateUserSetting changes a single setting by type.
func UpdateUserSetting(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := r.Context().Value(globals.UserIDKey).(string)
	settingType := ps.ByName("type")

	validSettings := map[string]bool{
		"theme":         true,
		"notifications": true,
		"language":      true,
		"time_zone":     true,
	}
	if !validSettings[settingType] {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid setting type")
		return
	}

	var update struct {
		Value any `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	opts := options.Update().SetUpsert(true)
	_, err := db.SettingsCollection.UpdateOne(context.TODO(),
		bson.M{"userID": userID},
		bson.M{"$set": bson.M{settingType: update.Value}}, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update setting")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"type":    settingType,
		"value":   update.Value,
	})
}
