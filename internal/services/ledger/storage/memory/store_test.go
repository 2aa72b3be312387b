package memory

import (
	"testing"

	"github.com/louisbranch/crowdfund/internal/services/ledger/storage"
	"github.com/louisbranch/crowdfund/internal/services/ledger/storage/storagetest"
)

func TestConformance(t *testing.T) {
	storagetest.RunConformance(t, func(t *testing.T) storage.Store {
		return New()
	})
}
