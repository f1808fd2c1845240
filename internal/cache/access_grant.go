package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrCacheDisabled 缓存未启用，无法发放访问凭证
var ErrCacheDisabled = errors.New("缓存未启用")

// PostAccessGrant 加密文章的访问凭证，密码校验通过后发放
type PostAccessGrant struct {
	PostID    uint      `json:"post_id"`
	Slug      string    `json:"slug"`
	GrantedAt time.Time `json:"granted_at"`
}

// IssuePostAccessGrant 发放访问凭证并写入缓存，返回凭证 token。
// 缓存未启用时不发放，避免客户端拿到永远无法通过校验的凭证。
func IssuePostAccessGrant(ctx context.Context, postID uint, slug string, ttl time.Duration) (string, error) {
	if !Enabled() {
		return "", ErrCacheDisabled
	}
	token := uuid.New().String()
	grant := PostAccessGrant{
		PostID:    postID,
		Slug:      slug,
		GrantedAt: time.Now(),
	}
	if err := SetJSON(ctx, postAccessKey(token), grant, ttl); err != nil {
		return "", err
	}
	return token, nil
}

// CheckPostAccessGrant 校验凭证是否对指定文章有效。
// 缓存不可用时视为无凭证，退回密码校验流程。
func CheckPostAccessGrant(ctx context.Context, token string, postID uint) bool {
	if token == "" || !Enabled() {
		return false
	}
	var grant PostAccessGrant
	found, err := GetJSON(ctx, postAccessKey(token), &grant)
	if err != nil || !found {
		return false
	}
	return grant.PostID == postID
}

// RevokePostAccessGrant 吊销访问凭证
func RevokePostAccessGrant(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return Del(ctx, postAccessKey(token))
}

func postAccessKey(token string) string {
	return fmt.Sprintf("post_access:%s", token)
}
