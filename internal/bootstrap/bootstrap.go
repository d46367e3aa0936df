package bootstrap

import (
	"context"
	"log/slog"

	"cloud.google.com/go/firestore"
	gcpkms "cloud.google.com/go/kms/apiv1"
	"firebase.google.com/go/v4/auth"
	"github.com/nats-io/nats.go"

	vertexclient "github.com/GregMSThompson/regexflow/internal/client/vertex"
	"github.com/GregMSThompson/regexflow/internal/config"
	"github.com/GregMSThompson/regexflow/pkg/logger"
)

// Bootstrap holds the process-wide clients. KMS, VertexAdapter and NATS are nil when
// their configuration is absent.
type Bootstrap struct {
	Log           *slog.Logger
	Firestore     *firestore.Client
	Firebase      *auth.Client
	KMS           *gcpkms.KeyManagementClient
	VertexAdapter *vertexclient.Adapter
	NATS          *nats.Conn
}

func Run(cfg *config.Config) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.NewCloudRunHandler)
	bs.Firestore, err = InitFirestore(applicationCtx, cfg.ProjectID, bs.Log)
	if err != nil {
		return bs, err
	}
	bs.Firebase, err = InitFirebase(applicationCtx, cfg.ProjectID)
	if err != nil {
		return bs, err
	}

	if cfg.KMSKeyName != "" {
		bs.KMS, err = gcpkms.NewKeyManagementClient(applicationCtx)
		if err != nil {
			return bs, err
		}
	} else {
		bs.Log.Warn("KMSKEYNAME not set; account identifiers stored unencrypted")
	}

	if cfg.VertexModel != "" {
		bs.VertexAdapter, err = vertexclient.NewAdapter(applicationCtx, bs.Log, cfg.ProjectID, cfg.Region, cfg.VertexModel)
		if err != nil {
			return bs, err
		}
	}

	bs.NATS, err = InitNATS(cfg.NATSURL, bs.Log)
	if err != nil {
		return bs, err
	}

	return bs, nil
}

// Close releases every client that was opened.
func (bs *Bootstrap) Close() {
	if bs.NATS != nil {
		if err := bs.NATS.Drain(); err != nil {
			bs.Log.Error("nats drain failed", "error", err)
		}
	}
	if bs.VertexAdapter != nil {
		_ = bs.VertexAdapter.Close()
	}
	if bs.KMS != nil {
		if err := bs.KMS.Close(); err != nil {
			bs.Log.Error("kms close failed", "error", err)
		}
	}
	if bs.Firestore != nil {
		if err := bs.Firestore.Close(); err != nil {
			bs.Log.Error("firestore close failed", "error", err)
		}
	}
}
