package transcript

import (
	"os"
	"testing"

	"github.com/tattle-made/whatsapp-scraper/internal/anonymize"
)

func TestMain(m *testing.M) {
	anonymize.SetDefault(anonymize.New("test-salt"))
	os.Exit(m.Run())
}
