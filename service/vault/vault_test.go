package vault

import (
	"errors"
	"strings"
	"testing"

	"servicedesk-backend/apperr"
	"servicedesk-backend/model"
)

// fakeVaultStore 内存实现，记录全部审计日志便于断言
type fakeVaultStore struct {
	credentials map[string]*model.Credential
	accessLogs  []model.CredentialAccessLog

	createErr error
	logErr    error
}

func newFakeVaultStore() *fakeVaultStore {
	return &fakeVaultStore{credentials: make(map[string]*model.Credential)}
}

func (s *fakeVaultStore) CreateCredential(credential *model.Credential) error {
	if s.createErr != nil {
		return s.createErr
	}
	copied := *credential
	s.credentials[credential.ID] = &copied
	return nil
}

func (s *fakeVaultStore) GetCredential(id string) (*model.Credential, error) {
	credential, ok := s.credentials[id]
	if !ok {
		return nil, nil
	}
	copied := *credential
	return &copied, nil
}

func (s *fakeVaultStore) ListCredentials(entityKind, entityID string) ([]model.Credential, error) {
	var result []model.Credential
	for _, credential := range s.credentials {
		if entityKind != "" && credential.EntityRef.EntityKind != entityKind {
			continue
		}
		if entityID != "" && credential.EntityRef.EntityID != entityID {
			continue
		}
		result = append(result, *credential)
	}
	return result, nil
}

func (s *fakeVaultStore) UpdateCredential(credential *model.Credential) error {
	copied := *credential
	s.credentials[credential.ID] = &copied
	return nil
}

func (s *fakeVaultStore) DeleteCredential(id string) error {
	delete(s.credentials, id)
	return nil
}

func (s *fakeVaultStore) CreateAccessLog(log *model.CredentialAccessLog) error {
	if s.logErr != nil {
		return s.logErr
	}
	s.accessLogs = append(s.accessLogs, *log)
	return nil
}

func (s *fakeVaultStore) lastLog(t *testing.T) model.CredentialAccessLog {
	t.Helper()
	if len(s.accessLogs) == 0 {
		t.Fatal("no access log written")
	}
	return s.accessLogs[len(s.accessLogs)-1]
}

func TestVaultCreateAndReveal(t *testing.T) {
	store := newFakeVaultStore()
	v := newVault(store)

	ref := model.EntityRef{EntityKind: "equipment", EntityID: "42"}
	credential, err := v.Create("alice", ref, "admin", "s3cret-token", "master-pw")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if credential.ID == "" {
		t.Error("Create() returned empty credential id")
	}
	if credential.EncryptedSecret == "s3cret-token" {
		t.Error("secret stored in plaintext")
	}
	if !strings.HasPrefix(credential.EncryptedSecret, "v1:") {
		t.Errorf("unexpected pack format: %s", credential.EncryptedSecret)
	}

	log := store.lastLog(t)
	if log.Action != model.CredentialActionCreate || !log.Success {
		t.Errorf("create audit = %+v, want successful create", log)
	}

	secret, err := v.Reveal("alice", credential.ID, "master-pw")
	if err != nil {
		t.Fatalf("Reveal() error = %v", err)
	}
	if secret != "s3cret-token" {
		t.Errorf("Reveal() = %q, want %q", secret, "s3cret-token")
	}

	log = store.lastLog(t)
	if log.Action != model.CredentialActionReveal || !log.Success {
		t.Errorf("reveal audit = %+v, want successful reveal", log)
	}
	if log.Actor != "alice" {
		t.Errorf("audit actor = %q, want alice", log.Actor)
	}
}

func TestVaultRevealWrongPassword(t *testing.T) {
	store := newFakeVaultStore()
	v := newVault(store)

	credential, err := v.Create("alice", model.EntityRef{EntityKind: "server", EntityID: "1"}, "root", "topsecret", "right-pw")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = v.Reveal("mallory", credential.ID, "wrong-pw")
	if !apperr.Is(err, apperr.KindAuthorization) {
		t.Fatalf("Reveal() error = %v, want authorization error", err)
	}

	// 失败的访问同样要留审计记录
	log := store.lastLog(t)
	if log.Action != model.CredentialActionReveal || log.Success {
		t.Errorf("failed reveal audit = %+v, want unsuccessful reveal", log)
	}
	if log.Actor != "mallory" {
		t.Errorf("audit actor = %q, want mallory", log.Actor)
	}
}

func TestVaultRevealTamperedCiphertext(t *testing.T) {
	store := newFakeVaultStore()
	v := newVault(store)

	credential, err := v.Create("alice", model.EntityRef{EntityKind: "server", EntityID: "1"}, "root", "topsecret", "pw")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	stored := store.credentials[credential.ID]
	parts := strings.Split(stored.EncryptedSecret, ":")
	// 翻转密文第一个字符
	tampered := []byte(parts[3])
	if tampered[0] == 'A' {
		tampered[0] = 'B'
	} else {
		tampered[0] = 'A'
	}
	parts[3] = string(tampered)
	stored.EncryptedSecret = strings.Join(parts, ":")

	_, err = v.Reveal("alice", credential.ID, "pw")
	if !apperr.Is(err, apperr.KindAuthorization) {
		t.Fatalf("Reveal() error = %v, want authorization error", err)
	}
}

func TestVaultCreateValidation(t *testing.T) {
	tests := []struct {
		name           string
		secret         string
		masterPassword string
	}{
		{name: "空密钥", secret: "", masterPassword: "pw"},
		{name: "空主密码", secret: "token", masterPassword: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeVaultStore()
			v := newVault(store)

			_, err := v.Create("alice", model.EntityRef{EntityKind: "server", EntityID: "1"}, "root", tt.secret, tt.masterPassword)
			if !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("Create() error = %v, want validation error", err)
			}

			log := store.lastLog(t)
			if log.Success {
				t.Error("validation failure should be audited as unsuccessful")
			}
		})
	}
}

func TestVaultDeleteThenReveal(t *testing.T) {
	store := newFakeVaultStore()
	v := newVault(store)

	credential, err := v.Create("alice", model.EntityRef{EntityKind: "server", EntityID: "1"}, "root", "root:hunter2", "pw")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	secret, err := v.Reveal("alice", credential.ID, "pw")
	if err != nil || secret != "root:hunter2" {
		t.Fatalf("Reveal() = %q, %v", secret, err)
	}

	if err := v.Delete("alice", credential.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err = v.Reveal("alice", credential.ID, "pw")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("Reveal() after delete error = %v, want not found", err)
	}
}

func TestVaultDeleteNotFound(t *testing.T) {
	store := newFakeVaultStore()
	v := newVault(store)

	err := v.Delete("alice", "no-such-id")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("Delete() error = %v, want not found error", err)
	}

	log := store.lastLog(t)
	if log.Action != model.CredentialActionDelete || log.Success {
		t.Errorf("failed delete audit = %+v, want unsuccessful delete", log)
	}
}

func TestVaultUpdateReencrypts(t *testing.T) {
	store := newFakeVaultStore()
	v := newVault(store)

	credential, err := v.Create("alice", model.EntityRef{EntityKind: "server", EntityID: "1"}, "root", "old-secret", "pw")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	before := store.credentials[credential.ID].EncryptedSecret

	if err := v.Update("alice", credential.ID, "", "new-secret", "pw"); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	after := store.credentials[credential.ID].EncryptedSecret
	if before == after {
		t.Error("Update() with new secret should rewrite ciphertext")
	}

	secret, err := v.Reveal("alice", credential.ID, "pw")
	if err != nil {
		t.Fatalf("Reveal() error = %v", err)
	}
	if secret != "new-secret" {
		t.Errorf("Reveal() = %q, want new-secret", secret)
	}

	// 换新密钥但没给主密码应拒绝
	err = v.Update("alice", credential.ID, "", "another", "")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("Update() error = %v, want validation error", err)
	}
}

func TestVaultStoreErrorAudited(t *testing.T) {
	store := newFakeVaultStore()
	store.createErr = errors.New("db down")
	v := newVault(store)

	_, err := v.Create("alice", model.EntityRef{EntityKind: "server", EntityID: "1"}, "root", "token", "pw")
	if err == nil {
		t.Fatal("Create() should propagate store error")
	}

	log := store.lastLog(t)
	if log.Success {
		t.Error("store failure should be audited as unsuccessful")
	}
}
