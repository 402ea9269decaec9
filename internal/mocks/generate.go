// Package mocks holds gomock doubles for the auth ports.
//
// Regenerate after interface changes with:
//
//	go generate ./internal/mocks
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=user_directory_mock.go github.com/yanqian/rencard-user/internal/domain/auth UserDirectory
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=refresh_token_store_mock.go github.com/yanqian/rencard-user/internal/domain/auth RefreshTokenStore
