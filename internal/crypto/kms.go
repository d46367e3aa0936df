package crypto

import (
	"context"
	"encoding/base64"
	"fmt"

	gcpkms "cloud.google.com/go/kms/apiv1"
	"cloud.google.com/go/kms/apiv1/kmspb"
)

// accountAAD binds ciphertexts to the account identifier field so they cannot be swapped into other fields.
var accountAAD = []byte("regexflow/transaction/accountId")

type kms struct {
	client  *gcpkms.KeyManagementClient
	keyName string
}

func NewKMS(client *gcpkms.KeyManagementClient, keyName string) *kms {
	return &kms{client: client, keyName: keyName}
}

// KmsEncrypt encrypts plaintext using the configured KMS key name and returns base64 text.
func (k *kms) KmsEncrypt(ctx context.Context, plaintext string) (string, error) {
	resp, err := k.client.Encrypt(ctx, &kmspb.EncryptRequest{
		Name:                        k.keyName,
		Plaintext:                   []byte(plaintext),
		AdditionalAuthenticatedData: accountAAD,
	})
	if err != nil {
		return "", fmt.Errorf("kms encrypt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(resp.Ciphertext), nil
}

// KmsDecrypt decrypts base64 ciphertext using the configured KMS key name.
func (k *kms) KmsDecrypt(ctx context.Context, ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("kms decode ciphertext: %w", err)
	}
	resp, err := k.client.Decrypt(ctx, &kmspb.DecryptRequest{
		Name:                        k.keyName,
		Ciphertext:                  raw,
		AdditionalAuthenticatedData: accountAAD,
	})
	if err != nil {
		return "", fmt.Errorf("kms decrypt: %w", err)
	}
	return string(resp.Plaintext), nil
}

// Plaintext stores values unchanged. Used for local runs without KMSKEYNAME.
type Plaintext struct{}

func (Plaintext) KmsEncrypt(_ context.Context, s string) (string, error) { return s, nil }
func (Plaintext) KmsDecrypt(_ context.Context, s string) (string, error) { return s, nil }

type Cipher interface {
	KmsEncrypt(ctx context.Context, plaintext string) (string, error)
	KmsDecrypt(ctx context.Context, ciphertext string) (string, error)
}

// NewCipher returns the KMS cipher, or Plaintext when no client was configured.
func NewCipher(client *gcpkms.KeyManagementClient, keyName string) Cipher {
	if client == nil {
		return Plaintext{}
	}
	return NewKMS(client, keyName)
}
