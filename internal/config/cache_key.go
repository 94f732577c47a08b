package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// RefreshTokenKey returns the key holding the owner of a refresh token JTI.
func (r *CacheKeyStruct) RefreshTokenKey(jti string) string {
	return fmt.Sprintf("refresh:%s", jti)
}

// UserRefreshSetKey returns the set of live refresh token JTIs for a user.
func (r *CacheKeyStruct) UserRefreshSetKey(userID string) string {
	return fmt.Sprintf("user:%s:refresh", userID)
}

// AdminFeedChannel returns the Redis PubSub channel for the admin live feed.
func (r *CacheKeyStruct) AdminFeedChannel() string {
	return "admin:feed"
}

var CacheKey = NewCacheKeyStruct()
