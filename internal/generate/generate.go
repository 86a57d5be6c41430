// Package generate synthesizes the daily raw transaction batch.
package generate

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/veridata/txn-curator/internal/config"
	"github.com/veridata/txn-curator/internal/schema"
	"github.com/veridata/txn-curator/internal/tabular"
)

// Columns is the fixed output column order of the raw batch.
var Columns = []string{
	"transaction_id", "user_id", "timestamp", "amount", "currency",
	"payment_method", "country", "device", "is_chargeback",
}

// countryCodes is the pool of ISO-3166 alpha-2 codes the generator draws
// from.
var countryCodes = []string{
	"AR", "AT", "AU", "BE", "BG", "BR", "CA", "CH", "CL", "CN",
	"CO", "CZ", "DE", "DK", "EE", "EG", "ES", "FI", "FR", "GB",
	"GR", "HR", "HU", "ID", "IE", "IL", "IN", "IT", "JP", "KE",
	"KR", "LT", "LU", "LV", "MA", "MX", "MY", "NG", "NL", "NO",
	"NZ", "PE", "PH", "PL", "PT", "RO", "RS", "SE", "SG", "SI",
	"SK", "TH", "TR", "TW", "UA", "US", "UY", "VN", "ZA",
}

// Generator produces deterministic synthetic batches: identical
// (count, seed, run-date) inputs yield byte-identical batches. The seed is
// an explicit parameter, never ambient state.
type Generator struct {
	cfg config.GeneratorConfig
}

// New creates a generator with the given tuning parameters.
func New(cfg config.GeneratorConfig) *Generator {
	return &Generator{cfg: cfg}
}

// Generate builds a batch of count records for the run-date.
func (g *Generator) Generate(count int, seed int64, runDate time.Time) *tabular.Batch {
	rnd := rand.New(rand.NewSource(seed))

	users := make([]string, g.cfg.Users)
	for i := range users {
		users[i] = fmt.Sprintf("u_%04d", i+1)
	}

	// Timestamps are uniform over the 365 days preceding the run-date,
	// through the end of the run-date itself.
	end := time.Date(runDate.Year(), runDate.Month(), runDate.Day(), 23, 59, 59, 0, time.UTC)
	start := end.AddDate(0, 0, -365).Truncate(24 * time.Hour)
	span := end.Unix() - start.Unix() + 1

	batch := tabular.New(Columns)
	for i := 1; i <= count; i++ {
		ts := time.Unix(start.Unix()+rnd.Int63n(span), 0).UTC()

		amount := g.cfg.AmountMin + rnd.Float64()*(g.cfg.AmountMax-g.cfg.AmountMin)
		amount = math.Round(amount*100) / 100

		chargeback := "0"
		if rnd.Float64() < g.cfg.ChargebackRate {
			chargeback = "1"
		}

		batch.Append(tabular.Record{
			"transaction_id": fmt.Sprintf("txn_%06d", i),
			"user_id":        users[rnd.Intn(len(users))],
			"timestamp":      ts.Format(schema.TimestampLayout),
			"amount":         strconv.FormatFloat(amount, 'f', 2, 64),
			"currency":       pick(rnd, schema.Currencies),
			"payment_method": pick(rnd, schema.PaymentMethods),
			"country":        pick(rnd, countryCodes),
			"device":         pick(rnd, schema.Devices),
			"is_chargeback":  chargeback,
		})
	}
	return batch
}

func pick(rnd *rand.Rand, values []string) string {
	return values[rnd.Intn(len(values))]
}
