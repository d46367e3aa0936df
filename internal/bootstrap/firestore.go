package bootstrap

import (
	"context"
	"log/slog"
	"os"

	"cloud.google.com/go/firestore"
)

// InitFirestore opens the client. With FIRESTORE_EMULATOR_HOST set the SDK talks to the emulator.
func InitFirestore(ctx context.Context, projectID string, log *slog.Logger) (*firestore.Client, error) {
	if host := os.Getenv("FIRESTORE_EMULATOR_HOST"); host != "" {
		log.Info("using firestore emulator", "host", host)
	}
	if projectID == "" {
		projectID = firestore.DetectProjectID
	}
	return firestore.NewClient(ctx, projectID)
}
