package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"servicedesk-backend/apperr"

	"golang.org/x/crypto/pbkdf2"
)

const (
	packVersion = "v1"

	// 高迭代次数，密钥派生刻意慢，这是安全属性
	kdfIterations = 600_000
	saltLength    = 16
	keyLength     = 32
)

func deriveKey(masterPassword string, salt []byte) []byte {
	return pbkdf2.Key([]byte(masterPassword), salt, kdfIterations, keyLength, sha256.New)
}

// encryptSecret 信封加密：每条记录用新盐派生密钥、新随机数加密，
// 输出打包格式 v1:<salt>:<nonce>:<ciphertext>（各部分base64）
func encryptSecret(secret, masterPassword string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %v", err)
	}

	block, err := aes.NewCipher(deriveKey(masterPassword, salt))
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %v", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create gcm: %v", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %v", err)
	}

	ciphertext := aead.Seal(nil, nonce, []byte(secret), nil)

	encode := base64.StdEncoding.EncodeToString
	return strings.Join([]string{
		packVersion,
		encode(salt),
		encode(nonce),
		encode(ciphertext),
	}, ":"), nil
}

// decryptSecret 用存储的盐重新派生密钥后做认证解密
// 主密码错误或密文被篡改时直接拒绝，不会部分解密
func decryptSecret(packed, masterPassword string) (string, error) {
	parts := strings.Split(packed, ":")
	if len(parts) != 4 || parts[0] != packVersion {
		return "", apperr.Validation("unsupported encrypted secret format")
	}

	decode := base64.StdEncoding.DecodeString
	salt, err := decode(parts[1])
	if err != nil {
		return "", apperr.Validation("malformed salt: %v", err)
	}
	nonce, err := decode(parts[2])
	if err != nil {
		return "", apperr.Validation("malformed nonce: %v", err)
	}
	ciphertext, err := decode(parts[3])
	if err != nil {
		return "", apperr.Validation("malformed ciphertext: %v", err)
	}

	block, err := aes.NewCipher(deriveKey(masterPassword, salt))
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %v", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create gcm: %v", err)
	}

	// 长度不符说明密文被篡改，提前拒绝，Open对错误长度的随机数会panic
	if len(salt) != saltLength || len(nonce) != aead.NonceSize() {
		return "", apperr.Authorization("wrong master password or tampered ciphertext")
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", apperr.Authorization("wrong master password or tampered ciphertext")
	}
	return string(plaintext), nil
}
