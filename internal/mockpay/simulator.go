// Package mockpay is a development stand-in for a hosted payment gateway. A payment
// moves Idle -> MethodSelected -> Processing -> Success|Failed and reports its terminal
// result exactly once.
package mockpay

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidTransition = errors.New("invalid payment state transition")
	ErrUnknownMethod     = errors.New("unknown payment method")
)

type Method string

const (
	MethodCreditCard Method = "credit_card"
	MethodDebitCard  Method = "debit_card"
	MethodNetbanking Method = "netbanking"
	MethodWallet     Method = "wallet"
	MethodUPI        Method = "upi"
)

func ParseMethod(value string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(value)))
	switch m {
	case MethodCreditCard, MethodDebitCard, MethodNetbanking, MethodWallet, MethodUPI:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, value)
}

type State int

const (
	StateIdle State = iota
	StateMethodSelected
	StateProcessing
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMethodSelected:
		return "method_selected"
	case StateProcessing:
		return "processing"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailed
}

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Result is the terminal callback payload. An empty TransactionID on a failed result
// means the shopper abandoned the payment; a simulated decline always carries an id.
type Result struct {
	Status          Status          `json:"status"`
	TransactionID   string          `json:"transactionId"`
	Amount          decimal.Decimal `json:"amount"`
	Method          Method          `json:"method,omitempty"`
	GatewayResponse map[string]any  `json:"gatewayResponse,omitempty"`
}

// Abandoned reports the user-abandonment signal.
func (r Result) Abandoned() bool {
	return r.Status == StatusFailed && r.TransactionID == ""
}

// Simulator draws outcomes and transaction ids. Ids are unique for the simulator's
// lifetime: the millisecond prefix never goes backwards, so only ids of the current
// millisecond are remembered. A zero seed draws a random one.
type Simulator struct {
	successRate float64
	delay       time.Duration
	now         func() time.Time

	mu       sync.Mutex
	rng      *rand.Rand
	issuedMs int64
	issued   map[string]struct{}
}

func NewSimulator(cfg config.MockPayConfig) (*Simulator, error) {
	if cfg.SuccessRate < 0 || cfg.SuccessRate > 1 {
		return nil, fmt.Errorf("success rate %v out of range [0,1]", cfg.SuccessRate)
	}
	if cfg.Delay < 0 {
		return nil, fmt.Errorf("delay must not be negative")
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Simulator{
		successRate: cfg.SuccessRate,
		delay:       cfg.Delay,
		now:         time.Now,
		rng:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		issued:      map[string]struct{}{},
	}, nil
}

// Start opens a payment for an order amount.
func (s *Simulator) Start(orderID string, amount decimal.Decimal, onResult func(Result)) *Payment {
	return &Payment{sim: s, orderID: orderID, amount: amount, onResult: onResult}
}

func (s *Simulator) draw() (success bool, txnID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	success = s.rng.Float64() < s.successRate

	ms := s.now().UnixMilli()
	if ms < s.issuedMs {
		ms = s.issuedMs
	}
	if ms != s.issuedMs {
		s.issuedMs = ms
		clear(s.issued)
	}
	for {
		id := fmt.Sprintf("TXN%d%06d", ms, s.rng.IntN(1_000_000))
		if _, dup := s.issued[id]; dup {
			continue
		}
		s.issued[id] = struct{}{}
		return success, id
	}
}

// Payment is one order's trip through the state machine.
type Payment struct {
	sim      *Simulator
	orderID  string
	amount   decimal.Decimal
	onResult func(Result)

	mu     sync.Mutex
	state  State
	method Method
	fields map[string]string
	result *Result
}

func (p *Payment) OrderID() string { return p.orderID }

func (p *Payment) Amount() decimal.Decimal { return p.amount }

func (p *Payment) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Result returns the terminal result once there is one.
func (p *Payment) Result() (Result, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.result == nil {
		return Result{}, false
	}
	return *p.result, true
}

// SelectMethod records the method and its form fields. Fields are kept as entered and
// never validated. Changing the method is allowed until processing starts.
func (p *Payment) SelectMethod(method Method, fields map[string]string) error {
	if _, err := ParseMethod(string(method)); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateIdle && p.state != StateMethodSelected {
		return fmt.Errorf("%w: select method while %s", ErrInvalidTransition, p.state)
	}
	p.method = method
	p.fields = make(map[string]string, len(fields))
	for k, v := range fields {
		p.fields[k] = v
	}
	p.state = StateMethodSelected
	return nil
}

// Submit processes the payment after the simulated delay. If ctx ends during the delay
// the payment returns to MethodSelected and can be submitted again.
func (p *Payment) Submit(ctx context.Context) (Result, error) {
	p.mu.Lock()
	if p.state != StateMethodSelected {
		state := p.state
		p.mu.Unlock()
		return Result{}, fmt.Errorf("%w: submit while %s", ErrInvalidTransition, state)
	}
	p.state = StateProcessing
	p.mu.Unlock()

	if p.sim.delay > 0 {
		timer := time.NewTimer(p.sim.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.mu.Lock()
			if p.state == StateProcessing {
				p.state = StateMethodSelected
			}
			p.mu.Unlock()
			return Result{}, ctx.Err()
		case <-timer.C:
		}
	}

	success, txnID := p.sim.draw()
	status := StatusFailed
	if success {
		status = StatusSuccess
	}

	p.mu.Lock()
	if p.state != StateProcessing {
		state := p.state
		p.mu.Unlock()
		return Result{}, fmt.Errorf("%w: payment ended while processing (%s)", ErrInvalidTransition, state)
	}
	result := Result{
		Status:        status,
		TransactionID: txnID,
		Amount:        p.amount,
		Method:        p.method,
		GatewayResponse: map[string]any{
			"gateway":   "mock",
			"orderId":   p.orderID,
			"status":    string(status),
			"processed": p.sim.now().UTC().Format(time.RFC3339),
		},
	}
	p.finishLocked(result, status)
	p.mu.Unlock()

	p.emit(result)
	return result, nil
}

// Abandon closes the payment without completing it. It is valid from any non-terminal
// state and yields a failed result with an empty transaction id.
func (p *Payment) Abandon() (Result, error) {
	p.mu.Lock()
	if p.state.Terminal() {
		state := p.state
		p.mu.Unlock()
		return Result{}, fmt.Errorf("%w: abandon while %s", ErrInvalidTransition, state)
	}
	result := Result{
		Status: StatusFailed,
		Amount: p.amount,
		Method: p.method,
		GatewayResponse: map[string]any{
			"gateway": "mock",
			"orderId": p.orderID,
			"reason":  "abandoned",
		},
	}
	p.finishLocked(result, StatusFailed)
	p.mu.Unlock()

	p.emit(result)
	return result, nil
}

func (p *Payment) finishLocked(result Result, status Status) {
	if status == StatusSuccess {
		p.state = StateSuccess
	} else {
		p.state = StateFailed
	}
	p.result = &result
}

func (p *Payment) emit(result Result) {
	if p.onResult != nil {
		p.onResult(result)
	}
}
