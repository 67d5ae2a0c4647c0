package db

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection       *mongo.Collection
	ProductsCollection   *mongo.Collection
	BarcodesCollection   *mongo.Collection
	SalesCollection      *mongo.Collection
	PaymentsCollection   *mongo.Collection
	DebtsCollection      *mongo.Collection
	DeliveriesCollection *mongo.Collection
	ReturnsCollection    *mongo.Collection
	SettingsCollection   *mongo.Collection
	CountersCollection   *mongo.Collection
	Client               *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ClientOptions := options.Client().ApplyURI(uri)
	var err error
	Client, err = mongo.Connect(context.TODO(), ClientOptions)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	if err = Client.Ping(context.TODO(), nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}

	database := Client.Database("beizuri")
	UserCollection = database.Collection("users")
	ProductsCollection = database.Collection("products")
	BarcodesCollection = database.Collection("barcodes")
	SalesCollection = database.Collection("sales")
	PaymentsCollection = database.Collection("payments")
	DebtsCollection = database.Collection("debts")
	DeliveriesCollection = database.Collection("deliveries")
	ReturnsCollection = database.Collection("returns")
	SettingsCollection = database.Collection("settings")
	CountersCollection = database.Collection("counters")

	log.Println("Connected to MongoDB")
}
