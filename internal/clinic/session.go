package clinic

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// Customer is one arrival at the clinic with the treatment they want.
type Customer struct {
	ID        uuid.UUID
	Treatment *Treatment
}

// NewCustomer draws a requested difficulty in [MinDifficulty, MaxDifficulty]
// and generates the customer's treatment from catalog.
func NewCustomer(rng *rand.Rand, catalog Catalog, cfg TreatmentConfig, opts ...Option) *Customer {
	difficulty := MinDifficulty + rng.Intn(MaxDifficulty-MinDifficulty+1)
	return &Customer{
		ID:        uuidFromRand(rng),
		Treatment: GenerateTreatment(rng, difficulty, catalog, cfg, opts...),
	}
}

// LedgerEntry records the payment for one served customer.
type LedgerEntry struct {
	CustomerID uuid.UUID
	Payment    int
	Result     EvalResult
}

// Session is the money and customer state of one play session. It is
// passed explicitly to whatever ends rounds; the evaluator never sees it.
type Session struct {
	money    int
	customer *Customer
	ledger   []LedgerEntry
}

// NewSession starts a session with startingMoney.
func NewSession(startingMoney int) *Session {
	return &Session{money: startingMoney}
}

func (s *Session) Money() int { return s.money }

// AddMoney adjusts the balance by delta.
func (s *Session) AddMoney(delta int) {
	s.money += delta
}

// SetCustomer makes c the customer being served.
func (s *Session) SetCustomer(c *Customer) { s.customer = c }

// CurrentCustomer returns the customer being served, or nil.
func (s *Session) CurrentCustomer() *Customer { return s.customer }

func (s *Session) ClearCustomer() { s.customer = nil }

// Settle credits a finished round for customer c and records it.
func (s *Session) Settle(c *Customer, res EvalResult) {
	var id uuid.UUID
	if c != nil {
		id = c.ID
	}
	s.AddMoney(res.FinalPayment)
	s.ledger = append(s.ledger, LedgerEntry{CustomerID: id, Payment: res.FinalPayment, Result: res})
}

// Ledger returns a copy of the settled rounds in order.
func (s *Session) Ledger() []LedgerEntry {
	out := make([]LedgerEntry, len(s.ledger))
	copy(out, s.ledger)
	return out
}

// Earnings is the total paid out over the session.
func (s *Session) Earnings() int {
	total := 0
	for _, e := range s.ledger {
		total += e.Payment
	}
	return total
}

// AverageScore is the mean final score over settled rounds, or 0.
func (s *Session) AverageScore() float64 {
	if len(s.ledger) == 0 {
		return 0
	}
	sum := 0.0
	for _, e := range s.ledger {
		sum += e.Result.FinalScore
	}
	return sum / float64(len(s.ledger))
}

// FormatResults renders the end-of-round results text.
func FormatResults(res EvalResult, money int) string {
	return fmt.Sprintf("Correct: %d%%\nWrong color: %d%%\nDirty: %d%%\n\nPayment: %d\nMoney: %d",
		roundHalfUp(res.CorrectCoverage*100),
		roundHalfUp(res.WrongColorRate*100),
		roundHalfUp(res.DirtyRate*100),
		res.FinalPayment,
		money)
}
