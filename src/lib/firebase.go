package lib

import (
	"context"
	"log"
	"os"
	"path"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

func getOpts(secretsPath string) []option.ClientOption {
	credentialsFile := path.Join(secretsPath, "admin-sdk-credentials.json")
	if _, err := os.Stat(credentialsFile); err != nil {
		// Fall back to application default credentials or the emulator.
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(credentialsFile)}
}

// NewFirestoreClient initializes a Firebase app and returns its Firestore client.
func NewFirestoreClient(ctx context.Context, projectID string, secretsPath string) (*firestore.Client, error) {
	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}
	app, err := firebase.NewApp(ctx, conf, getOpts(secretsPath)...)
	if err != nil {
		log.Printf("error initializing app: %v\n", err.Error())
		return nil, err
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		log.Printf("error initializing Firestore: %v\n", err.Error())
		return nil, err
	}
	return client, nil
}
