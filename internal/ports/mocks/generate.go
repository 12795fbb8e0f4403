//go:generate mockgen -source=../order_source.go       -destination=./mock_order_source.go       -package=mocks
//go:generate mockgen -source=../snapshot_store.go     -destination=./mock_snapshot_store.go     -package=mocks
//go:generate mockgen -source=../price_catalog.go      -destination=./mock_price_catalog.go      -package=mocks
//go:generate mockgen -source=../session_repository.go -destination=./mock_session_repository.go -package=mocks
//go:generate mockgen -source=../services.go           -destination=./mock_services.go           -package=mocks
//go:generate mockgen -source=../validator.go          -destination=./mock_validator.go          -package=mocks
//go:generate mockgen -source=../session_verifier.go   -destination=./mock_session_verifier.go   -package=mocks

package mocks
