// Package mocks provides go.uber.org/mock (gomock) mocks for the core ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
package mocks

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=task_repository_mock.go github.com/admarket/moderation/internal/core TaskRepository
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=listing_repository_mock.go github.com/admarket/moderation/internal/core ListingRepository
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=cache_repository_mock.go github.com/admarket/moderation/internal/core CacheRepository
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=publisher_mock.go github.com/admarket/moderation/internal/core Publisher
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=consumer_mock.go github.com/admarket/moderation/internal/core WorkConsumer
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=scorer_mock.go github.com/admarket/moderation/internal/core Scorer
