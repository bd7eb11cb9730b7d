package auth

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"propshare-backend/internal/domain"
	"propshare-backend/internal/ledger"
	"propshare-backend/internal/middleware"
	"propshare-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LoginInput for login request body.
type LoginInput struct {
	KeyID  string `json:"key_id"`
	Secret string `json:"secret"`
}

// SessionPrincipal is the object stored in session and returned by /me.
type SessionPrincipal struct {
	KeyID        string   `json:"key_id"`
	Address      string   `json:"address"`
	Label        string   `json:"label"`
	Capabilities []string `json:"capabilities"`
}

// PrincipalFinder abstracts key lookup (GORM in production, doubles in tests).
type PrincipalFinder interface {
	FindByKey(keyID, secret string) (*domain.Principal, error)
}

// GormPrincipalFinder implements PrincipalFinder using GORM and bcrypt.
type GormPrincipalFinder struct{ DB *gorm.DB }

func (g *GormPrincipalFinder) FindByKey(keyID, secret string) (*domain.Principal, error) {
	return LoginPrincipal(g.DB, LoginInput{KeyID: keyID, Secret: secret})
}

// LoginPrincipal finds a principal by key id and verifies its secret.
func LoginPrincipal(db *gorm.DB, input LoginInput) (*domain.Principal, error) {
	if input.KeyID == "" || input.Secret == "" {
		return nil, ErrKeyRequired
	}
	id, err := uuid.Parse(input.KeyID)
	if err != nil {
		return nil, ErrUnknownKey
	}
	var p domain.Principal
	if err := db.Where("key_id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownKey
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.SecretHash), []byte(input.Secret)); err != nil {
		return nil, ErrIncorrectSecret
	}
	return &p, nil
}

// Capabilities decodes the stored capability list.
func Capabilities(p *domain.Principal) ([]string, error) {
	var caps []string
	if len(p.Capabilities) == 0 {
		return caps, nil
	}
	if err := json.Unmarshal(p.Capabilities, &caps); err != nil {
		return nil, fmt.Errorf("decode capabilities of %s: %w", p.KeyID, err)
	}
	return caps, nil
}

// ToSession builds the session shape for a logged-in principal.
func ToSession(p *domain.Principal) (*SessionPrincipal, error) {
	caps, err := Capabilities(p)
	if err != nil {
		return nil, err
	}
	if caps == nil {
		caps = []string{}
	}
	return &SessionPrincipal{
		KeyID:        p.KeyID.String(),
		Address:      p.Address,
		Label:        p.Label,
		Capabilities: caps,
	}, nil
}

// GrantInput describes a new API key.
type GrantInput struct {
	Address      string
	Label        string
	Capabilities []string
}

// GrantKey creates a principal and returns it with its plaintext secret, which is shown once.
func GrantKey(db *gorm.DB, in GrantInput) (*domain.Principal, string, error) {
	address, err := ledger.NormalizeAddress(in.Address)
	if err != nil {
		return nil, "", err
	}
	caps := make([]string, 0, len(in.Capabilities))
	seen := make(map[string]bool)
	for _, c := range in.Capabilities {
		cp, err := ledger.ParseCapability(c)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %q", ErrInvalidCapability, c)
		}
		if !seen[string(cp)] {
			seen[string(cp)] = true
			caps = append(caps, string(cp))
		}
	}
	capsJSON, err := json.Marshal(caps)
	if err != nil {
		return nil, "", err
	}
	secret, err := NewSecret()
	if err != nil {
		return nil, "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	p := &domain.Principal{
		Address:      address,
		Label:        in.Label,
		SecretHash:   string(hash),
		Capabilities: datatypes.JSON(capsJSON),
	}
	if err := db.Create(p).Error; err != nil {
		return nil, "", err
	}
	return p, secret, nil
}

const secretAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

// NewSecret returns a random 32-character alphanumeric key secret.
func NewSecret() (string, error) {
	out := make([]byte, 32)
	max := big.NewInt(int64(len(secretAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = secretAlphabet[n.Int64()]
	}
	s := string(out)
	if !validation.IsValidKeySecret(s) {
		return "", errors.New("generated secret failed validation")
	}
	return s, nil
}

// VerifyPrincipal validates the session value and returns the shape for /me.
func VerifyPrincipal(sessionUser interface{}) (*SessionPrincipal, error) {
	if sessionUser == nil {
		return nil, ErrNotAuthenticated
	}
	m, ok := sessionUser.(map[string]interface{})
	if !ok {
		return nil, ErrNotAuthenticated
	}
	keyID, _ := m["key_id"].(string)
	address, _ := m["address"].(string)
	if keyID == "" || address == "" {
		return nil, ErrNotAuthenticated
	}
	out := &SessionPrincipal{
		KeyID:        keyID,
		Address:      address,
		Label:        str(m["label"]),
		Capabilities: []string{},
	}
	switch caps := m["capabilities"].(type) {
	case []string:
		out.Capabilities = append(out.Capabilities, caps...)
	case []interface{}:
		for _, c := range caps {
			if s, ok := c.(string); ok {
				out.Capabilities = append(out.Capabilities, s)
			}
		}
	}
	return out, nil
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// KeySessionsKey is the Redis set of session ids opened with one key.
func KeySessionsKey(keyID string) string {
	return "key_sessions:" + keyID
}

// RevokeKey soft-deletes a principal and ends every session it opened.
func RevokeKey(ctx context.Context, db *gorm.DB, rdb *redis.Client, keyID string) (int, error) {
	id, err := uuid.Parse(keyID)
	if err != nil {
		return 0, ErrUnknownKey
	}
	res := db.WithContext(ctx).Where("key_id = ?", id).Delete(&domain.Principal{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrUnknownKey
	}
	if rdb == nil {
		return 0, nil
	}
	ids, err := rdb.SMembers(ctx, KeySessionsKey(keyID)).Result()
	if err != nil {
		return 0, err
	}
	for _, sid := range ids {
		if err := rdb.Del(ctx, middleware.SessionRedisPrefix+sid).Err(); err != nil {
			return 0, err
		}
	}
	return len(ids), rdb.Del(ctx, KeySessionsKey(keyID)).Err()
}
