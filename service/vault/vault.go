package vault

import (
	"log/slog"

	"servicedesk-backend/apperr"
	"servicedesk-backend/dao"
	"servicedesk-backend/model"

	"github.com/google/uuid"
)

// Store 保险库需要的持久层能力
type Store interface {
	CreateCredential(credential *model.Credential) error
	GetCredential(id string) (*model.Credential, error)
	ListCredentials(entityKind, entityID string) ([]model.Credential, error)
	UpdateCredential(credential *model.Credential) error
	DeleteCredential(id string) error
	CreateAccessLog(log *model.CredentialAccessLog) error
}

type daoStore struct{}

func (daoStore) CreateCredential(credential *model.Credential) error {
	return dao.CreateCredential(credential)
}

func (daoStore) GetCredential(id string) (*model.Credential, error) {
	return dao.GetCredentialByID(id)
}

func (daoStore) ListCredentials(entityKind, entityID string) ([]model.Credential, error) {
	return dao.ListCredentials(entityKind, entityID)
}

func (daoStore) UpdateCredential(credential *model.Credential) error {
	return dao.UpdateCredential(credential)
}

func (daoStore) DeleteCredential(id string) error {
	return dao.DeleteCredential(id)
}

func (daoStore) CreateAccessLog(log *model.CredentialAccessLog) error {
	return dao.CreateCredentialAccessLog(log)
}

// Vault 凭据保险库
// 每次操作（包括失败的）必定写一条审计日志；
// 派生密钥和明文不做任何缓存，每次reveal都重新跑完整的密钥派生
type Vault struct {
	store Store
}

func NewVault() *Vault {
	return newVault(daoStore{})
}

func newVault(store Store) *Vault {
	return &Vault{store: store}
}

// audit 在defer中调用，异常路径也保证落审计日志
func (v *Vault) audit(credentialID, actor string, action model.CredentialAction, success *bool) {
	err := v.store.CreateAccessLog(&model.CredentialAccessLog{
		CredentialID: credentialID,
		Actor:        actor,
		Action:       action,
		Success:      *success,
	})
	if err != nil {
		slog.Error("Failed to write credential access log",
			"credential_id", credentialID,
			"action", action,
			"err", err,
		)
	}
}

func (v *Vault) Create(actor string, ref model.EntityRef, username, secret, masterPassword string) (*model.Credential, error) {
	credential := &model.Credential{
		ID:        uuid.New().String(),
		EntityRef: ref,
		Username:  username,
	}

	success := false
	defer v.audit(credential.ID, actor, model.CredentialActionCreate, &success)

	if secret == "" {
		return nil, apperr.Validation("secret is empty")
	}
	if masterPassword == "" {
		return nil, apperr.Validation("master password is empty")
	}

	packed, err := encryptSecret(secret, masterPassword)
	if err != nil {
		return nil, err
	}
	credential.EncryptedSecret = packed

	if err := v.store.CreateCredential(credential); err != nil {
		return nil, err
	}

	success = true
	return credential, nil
}

func (v *Vault) Reveal(actor, id, masterPassword string) (string, error) {
	success := false
	defer v.audit(id, actor, model.CredentialActionReveal, &success)

	credential, err := v.store.GetCredential(id)
	if err != nil {
		return "", err
	}
	if credential == nil {
		return "", apperr.NotFound("credential %s not found", id)
	}

	secret, err := decryptSecret(credential.EncryptedSecret, masterPassword)
	if err != nil {
		return "", err
	}

	success = true
	return secret, nil
}

func (v *Vault) Update(actor, id, username, secret, masterPassword string) error {
	success := false
	defer v.audit(id, actor, model.CredentialActionUpdate, &success)

	credential, err := v.store.GetCredential(id)
	if err != nil {
		return err
	}
	if credential == nil {
		return apperr.NotFound("credential %s not found", id)
	}

	if username != "" {
		credential.Username = username
	}
	if secret != "" {
		if masterPassword == "" {
			return apperr.Validation("master password is empty")
		}
		packed, err := encryptSecret(secret, masterPassword)
		if err != nil {
			return err
		}
		credential.EncryptedSecret = packed
	}

	if err := v.store.UpdateCredential(credential); err != nil {
		return err
	}

	success = true
	return nil
}

func (v *Vault) Delete(actor, id string) error {
	success := false
	defer v.audit(id, actor, model.CredentialActionDelete, &success)

	credential, err := v.store.GetCredential(id)
	if err != nil {
		return err
	}
	if credential == nil {
		return apperr.NotFound("credential %s not found", id)
	}

	if err := v.store.DeleteCredential(id); err != nil {
		return err
	}

	success = true
	return nil
}

func (v *Vault) List(actor, entityKind, entityID string) ([]model.Credential, error) {
	success := false
	defer v.audit("", actor, model.CredentialActionList, &success)

	credentials, err := v.store.ListCredentials(entityKind, entityID)
	if err != nil {
		return nil, err
	}

	success = true
	return credentials, nil
}
