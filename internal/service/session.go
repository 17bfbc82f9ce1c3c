package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// SessionGate 登录会话：签名令牌 + 服务端登记表
// 令牌 jti 必须仍在登记表中才视为登录，登出即从登记表删除
type SessionGate struct {
	secret []byte
	ttl    time.Duration
	active *cache.Cache
}

// NewSessionGate ttl 为 0 表示会话不过期
func NewSessionGate(secret string, ttl time.Duration) *SessionGate {
	expiration, cleanup := cache.NoExpiration, time.Duration(0)
	if ttl > 0 {
		expiration, cleanup = ttl, ttl/2
	}
	return &SessionGate{
		secret: []byte(secret),
		ttl:    ttl,
		active: cache.New(expiration, cleanup),
	}
}

// Issue 为用户创建会话并返回令牌
func (g *SessionGate) Issue(username string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:  username,
		ID:       uuid.NewString(),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if g.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(g.ttl))
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", err
	}

	g.active.Set(claims.ID, username, cache.DefaultExpiration)
	return token, nil
}

// Check 校验令牌，返回对应用户名
func (g *SessionGate) Check(token string) (string, bool) {
	claims, err := g.parse(token)
	if err != nil {
		return "", false
	}

	username, ok := g.active.Get(claims.ID)
	if !ok || username.(string) != claims.Subject {
		return "", false
	}
	return claims.Subject, true
}

// Revoke 注销令牌，重复调用无副作用
func (g *SessionGate) Revoke(token string) {
	claims, err := g.parse(token)
	if err != nil {
		return
	}
	g.active.Delete(claims.ID)
}

// Active 当前有效会话数
func (g *SessionGate) Active() int {
	return g.active.ItemCount()
}

func (g *SessionGate) parse(token string) (*jwt.RegisteredClaims, error) {
	if token == "" {
		return nil, jwt.ErrTokenMalformed
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return g.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.ID == "" {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}
