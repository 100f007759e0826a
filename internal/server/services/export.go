package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"filippo.io/age"
	"filippo.io/age/armor"
	"github.com/dmitrijs2005/passkeeper/internal/common"
	sc "github.com/dmitrijs2005/passkeeper/internal/server/config"
	"github.com/dmitrijs2005/passkeeper/internal/server/models"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const exportFormatVersion = 1

var (
	// exportWorkFactor is the scrypt log2 work factor for export passphrases.
	exportWorkFactor = 18

	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// credentialLister is the part of CredentialService an export needs.
type credentialLister interface {
	List(ctx context.Context, id models.Identity) ([]*models.Credential, error)
}

type exportDocument struct {
	Version     int                  `json:"version"`
	ExportedAt  time.Time            `json:"exportedAt"`
	Email       string               `json:"email"`
	Credentials []exportedCredential `json:"credentials"`
}

type exportedCredential struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Username    string    `json:"username"`
	Password    string    `json:"password"`
	URL         string    `json:"url,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ExportService writes passphrase-encrypted copies of an owner's vault to
// object storage and hands back a short-lived download link.
type ExportService struct {
	credentials credentialLister
	config      *sc.Config
	now         func() time.Time
}

func NewExportService(credentials credentialLister, config *sc.Config) *ExportService {
	return &ExportService{
		credentials: credentials,
		config:      config,
		now:         time.Now,
	}
}

// GetExportStorageKey returns a fresh object key under the user's export prefix.
func GetExportStorageKey(userID string, d time.Time) string {
	return fmt.Sprintf("users/%s/exports/%04d/%02d/%02d/%s.age", userID, d.Year(), int(d.Month()), d.Day(), uuid.New())
}

func (s *ExportService) getClients(ctx context.Context) (*s3.Client, *s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, newS3PresignClient(client), nil
}

// encryptExport writes plaintext to w as an ASCII-armored age file that
// opens with passphrase.
func encryptExport(w io.Writer, passphrase string, plaintext []byte) error {
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return err
	}
	recipient.SetWorkFactor(exportWorkFactor)

	armored := armor.NewWriter(w)
	enc, err := age.Encrypt(armored, recipient)
	if err != nil {
		return err
	}
	if _, err := enc.Write(plaintext); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return armored.Close()
}

func buildExportDocument(id models.Identity, list []*models.Credential, at time.Time) exportDocument {
	doc := exportDocument{
		Version:     exportFormatVersion,
		ExportedAt:  at,
		Email:       id.Email,
		Credentials: make([]exportedCredential, 0, len(list)),
	}
	for _, c := range list {
		doc.Credentials = append(doc.Credentials, exportedCredential{
			ID:          c.ID,
			Title:       c.Title,
			Username:    c.Username,
			Password:    c.Secret,
			URL:         c.URL,
			Description: c.Description,
			CreatedAt:   c.CreatedAt,
			UpdatedAt:   c.UpdatedAt,
		})
	}
	return doc
}

// Export encrypts the owner's credentials with passphrase, uploads the
// result and returns a presigned GET link valid for ExportLinkValidity.
func (s *ExportService) Export(ctx context.Context, id models.Identity, passphrase string) (*models.Export, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	if passphrase == "" {
		return nil, common.NewValidationError("missing required fields", "passphrase")
	}

	list, err := s.credentials.List(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	plaintext, err := json.Marshal(buildExportDocument(id, list, now))
	if err != nil {
		return nil, internalError("error encoding export", err)
	}
	defer common.WipeByteArray(plaintext)

	var buf bytes.Buffer
	if err := encryptExport(&buf, passphrase, plaintext); err != nil {
		return nil, internalError("error encrypting export", err)
	}

	client, presigner, err := s.getClients(ctx)
	if err != nil {
		return nil, internalError("error configuring object storage", err)
	}

	bucket := s.config.S3Bucket
	key := GetExportStorageKey(id.UserID, now)

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:        &bucket,
		Key:           &key,
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(int64(buf.Len())),
		ContentType:   aws.String("application/octet-stream"),
	})
	if err != nil {
		return nil, internalError("error uploading export", err)
	}

	validity := s.config.ExportLinkValidity
	req, err := presignGetObject(presigner, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(validity))
	if err != nil {
		return nil, internalError("error presigning export", err)
	}

	return &models.Export{
		Key:       key,
		URL:       req.URL,
		ExpiresAt: now.Add(validity),
		Count:     len(list),
	}, nil
}
