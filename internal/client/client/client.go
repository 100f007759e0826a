package client

import (
	"context"

	"github.com/dmitrijs2005/passkeeper/internal/client/models"
)

// Client is the passkeeper API as seen by the CLI.
type Client interface {
	Ping(ctx context.Context) error
	Register(ctx context.Context, email string, password []byte, name string) (*models.User, error)
	Login(ctx context.Context, email string, password []byte) (*models.Session, error)
	Logout(ctx context.Context) error
	Session(ctx context.Context) (*models.Session, error)
	List(ctx context.Context) ([]models.Credential, error)
	Create(ctx context.Context, in models.CredentialInput) (*models.Credential, error)
	Update(ctx context.Context, id string, p models.CredentialPatch) (*models.Credential, error)
	Delete(ctx context.Context, id string) error
	Dashboard(ctx context.Context) (*models.Dashboard, error)
	Export(ctx context.Context, passphrase []byte) (*models.Export, error)
}
