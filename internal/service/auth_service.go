package service

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/RuleViz/LightBlog/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// AuthService 管理端认证服务。
// 站点只有一个共享的管理密码，按配置明文比对，不做任何散列。
type AuthService struct {
	cfg *config.Config
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

// JWTClaims JWT 声明
type JWTClaims struct {
	Subject string `json:"sub_role"`
	jwt.RegisteredClaims
}

// Login 校验共享管理密码并签发 Token
func (s *AuthService) Login(password string) (string, time.Time, error) {
	configured := s.cfg.Admin.Password
	if configured == "" {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(configured), []byte(password)) != 1 {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return s.GenerateJWT()
}

// GenerateJWT 生成管理端 JWT Token
func (s *AuthService) GenerateJWT() (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(s.cfg.JWT.ExpireHours) * time.Hour)

	claims := JWTClaims{
		Subject: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ParseJWT 解析 JWT Token
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("无效的 token")
}
