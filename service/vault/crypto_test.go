package vault

import (
	"encoding/base64"
	"strings"
	"testing"

	"servicedesk-backend/apperr"
)

func TestEncryptSecretRoundtrip(t *testing.T) {
	packed, err := encryptSecret("my-api-token", "master")
	if err != nil {
		t.Fatalf("encryptSecret() error = %v", err)
	}
	if parts := strings.Split(packed, ":"); len(parts) != 4 || parts[0] != packVersion {
		t.Fatalf("unexpected pack format: %s", packed)
	}

	plaintext, err := decryptSecret(packed, "master")
	if err != nil {
		t.Fatalf("decryptSecret() error = %v", err)
	}
	if plaintext != "my-api-token" {
		t.Errorf("decryptSecret() = %q, want my-api-token", plaintext)
	}
}

func TestEncryptSecretSaltIsFresh(t *testing.T) {
	first, err := encryptSecret("same-secret", "master")
	if err != nil {
		t.Fatalf("encryptSecret() error = %v", err)
	}
	second, err := encryptSecret("same-secret", "master")
	if err != nil {
		t.Fatalf("encryptSecret() error = %v", err)
	}
	if first == second {
		t.Error("encrypting the same secret twice should produce different ciphertext")
	}
}

// 随机数或盐被换成错误长度时必须拒绝，不允许panic
func TestDecryptSecretTamperedComponentLength(t *testing.T) {
	packed, err := encryptSecret("my-api-token", "master")
	if err != nil {
		t.Fatalf("encryptSecret() error = %v", err)
	}
	parts := strings.Split(packed, ":")

	encode := base64.StdEncoding.EncodeToString
	tests := []struct {
		name   string
		packed string
	}{
		{
			name:   "短随机数",
			packed: strings.Join([]string{parts[0], parts[1], encode([]byte("nonce")), parts[3]}, ":"),
		},
		{
			name:   "短盐",
			packed: strings.Join([]string{parts[0], encode([]byte("salt")), parts[2], parts[3]}, ":"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decryptSecret(tt.packed, "master")
			if !apperr.Is(err, apperr.KindAuthorization) {
				t.Errorf("decryptSecret() error = %v, want authorization error", err)
			}
		})
	}
}

func TestDecryptSecretMalformedPack(t *testing.T) {
	tests := []struct {
		name   string
		packed string
	}{
		{name: "字段数不对", packed: "v1:only-two"},
		{name: "版本不支持", packed: "v2:a:b:c"},
		{name: "非base64盐", packed: "v1:!!!:b:c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decryptSecret(tt.packed, "master")
			if !apperr.Is(err, apperr.KindValidation) {
				t.Errorf("decryptSecret(%q) error = %v, want validation error", tt.packed, err)
			}
		})
	}
}
