package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/eduback/pkg/config"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// Claims 访问令牌声明，携带角色与权限快照
type Claims struct {
	UserID      int64    `json:"userId"`
	Email       string   `json:"email"`
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// RefreshClaims 刷新令牌声明
// 刻意只保留主体标识：角色和权限在刷新时必须从存储重新解析，
// 避免过期的授权信息在刷新窗口内存续
type RefreshClaims struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenPayload 签发令牌所需的逻辑载荷
type TokenPayload struct {
	UserID      int64
	Email       string
	Username    string
	Role        string
	Permissions []string
}

// TokenPair 一次签发的令牌对
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenManager JWT管理器，访问令牌与刷新令牌使用独立密钥
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration

	// Now 时钟源，测试时可替换
	Now func() time.Time
}

// NewTokenManager 创建JWT管理器
func NewTokenManager(cfg *config.JWTConfig) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		issuer:        cfg.Issuer,
		accessTTL:     cfg.AccessTTL(),
		refreshTTL:    cfg.RefreshTTL(),
		Now:           time.Now,
	}
}

// GenerateTokens 从同一逻辑载荷签发访问令牌和刷新令牌
func (m *TokenManager) GenerateTokens(payload *TokenPayload) (*TokenPair, error) {
	accessToken, err := m.generateAccessToken(payload)
	if err != nil {
		return nil, err
	}

	refreshToken, err := m.generateRefreshToken(payload)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// generateAccessToken 签发访问令牌
func (m *TokenManager) generateAccessToken(payload *TokenPayload) (string, error) {
	now := m.Now()
	claims := Claims{
		UserID:      payload.UserID,
		Email:       payload.Email,
		Username:    payload.Username,
		Role:        payload.Role,
		Permissions: payload.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   strconv.FormatInt(payload.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.accessSecret)
}

// generateRefreshToken 签发刷新令牌(精简声明集)
func (m *TokenManager) generateRefreshToken(payload *TokenPayload) (string, error) {
	now := m.Now()
	claims := RefreshClaims{
		UserID: payload.UserID,
		Email:  payload.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   strconv.FormatInt(payload.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.refreshTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.refreshSecret)
}

// VerifyAccessToken 验证访问令牌
// 过期和无效(篡改/格式错误/密钥不符)是两类可区分的错误，
// 调用方据此决定是提示刷新还是强制重新登录
func (m *TokenManager) VerifyAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.accessSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.Now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrTokenInvalid
}

// VerifyRefreshToken 验证刷新令牌
func (m *TokenManager) VerifyRefreshToken(tokenString string) (*RefreshClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &RefreshClaims{}, func(token *jwt.Token) (interface{}, error) {
		return m.refreshSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.Now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if claims, ok := token.Claims.(*RefreshClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrTokenInvalid
}

// AccessTTL 获取访问令牌有效期
func (m *TokenManager) AccessTTL() time.Duration {
	return m.accessTTL
}

// ExtractBearer 从 Authorization 头提取 Bearer 令牌
func ExtractBearer(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}
