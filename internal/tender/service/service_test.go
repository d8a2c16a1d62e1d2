package service

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/johnsondatabase/tender-sub001/internal/tender/notify"
	"github.com/johnsondatabase/tender-sub001/internal/tender/repository"
	"github.com/johnsondatabase/tender-sub001/internal/tender/sse"
	"github.com/johnsondatabase/tender-sub001/internal/tender/store"
	"github.com/johnsondatabase/tender-sub001/internal/tender/testutil"
)

type testEnv struct {
	db    *gorm.DB
	repos *repository.Repositories
	store *store.Store
	kv    *testutil.MemKV
	svc   *Services
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	st := store.New(repos, testutil.Logger())
	hub := sse.NewHub()
	notifier := notify.New("", testutil.Logger())
	kv := testutil.NewMemKV()

	return &testEnv{
		db:    db,
		repos: repos,
		store: st,
		kv:    kv,
		svc:   NewServices(repos, st, hub, notifier, kv, testutil.Logger()),
	}
}

func (e *testEnv) saveListing(t *testing.T, req *SaveListingRequest) {
	t.Helper()
	if _, err := e.svc.Listing.Save(context.Background(), "u1", "Alice", req); err != nil {
		t.Fatalf("save listing %s: %v", req.Code, err)
	}
}

func baseRequest(code string) *SaveListingRequest {
	created := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	return &SaveListingRequest{
		Code:         code,
		Year:         2026,
		HospitalName: "Bệnh viện Chợ Rẫy",
		Province:     "Ho Chi Minh",
		Region:       "South",
		Distributor:  "MedCo",
		Industry:     "Pharma",
		CreatedDate:  &created,
		LineItems: []LineItemInput{
			{MaterialCode: "M1", MaterialName: "Syringe", Quota: 100},
			{MaterialCode: "M2", MaterialName: "Catheter", Quota: 40},
		},
	}
}
