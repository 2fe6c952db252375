package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"testing"
	"time"

	"campus-pay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pay fires a transfer over HTTP and returns the status code. Safe to
// call from multiple goroutines.
func pay(serverURL, token string, payeeID uuid.UUID, amount int64) (int, error) {
	body, _ := json.Marshal(map[string]any{
		"payee_id": payeeID.String(),
		"amount":   amount,
	})
	req, err := http.NewRequest(http.MethodPost, serverURL+"/api/v1/payments", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

func TestIntegration_ConcurrentSpends_OnlyOneWins(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	payer, payerToken := app.provision(t, "p@campus.edu", "priya", domain.RoleConsumer)
	payee, _ := app.provision(t, "q@campus.edu", "quentin", domain.RoleConsumer)

	// Balance 200, ten simultaneous attempts to spend 150: the funds
	// cover exactly one of them.
	const attempts = 10
	results := make(chan int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, err := pay(app.server.URL, payerToken, payee.ID, 150)
			if err != nil {
				code = -1
			}
			results <- code
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for code := range results {
		switch code {
		case http.StatusCreated:
			succeeded++
		case http.StatusPaymentRequired:
			rejected++
		default:
			t.Errorf("unexpected status %d", code)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, rejected)
	assert.Equal(t, int64(50), app.store.balance(payer.ID))
	assert.Equal(t, int64(350), app.store.balance(payee.ID))
	assert.Equal(t, 1, app.store.ledgerSize())
}

func TestIntegration_ConservationUnderLoad(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	const accounts = 4
	ids := make([]uuid.UUID, accounts)
	tokens := make([]string, accounts)
	for i := 0; i < accounts; i++ {
		a, token := app.provision(t,
			fmt.Sprintf("u%d@campus.edu", i),
			fmt.Sprintf("user%d", i),
			domain.RoleConsumer,
		)
		ids[i] = a.ID
		tokens[i] = token
	}
	total := int64(accounts * 200)

	const transfers = 40
	var wg sync.WaitGroup
	for i := 0; i < transfers; i++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(seed)))
			from := rng.Intn(accounts)
			to := (from + 1 + rng.Intn(accounts-1)) % accounts
			amount := int64(1 + rng.Intn(20))
			pay(app.server.URL, tokens[from], ids[to], amount) //nolint:errcheck
		}(i)
	}
	wg.Wait()

	// However the individual transfers fared, money was only moved,
	// never created or destroyed, and no balance went negative.
	var sum int64
	for _, id := range ids {
		b := app.store.balance(id)
		assert.GreaterOrEqual(t, b, int64(0))
		sum += b
	}
	assert.Equal(t, total, sum)
}

func TestIntegration_OpposingTransfersComplete(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	a, tokenA := app.provision(t, "a@campus.edu", "alpha", domain.RoleConsumer)
	b, tokenB := app.provision(t, "b@campus.edu", "beta", domain.RoleConsumer)

	// A pays B while B pays A, repeatedly. With ordered locking this
	// must finish; a deadlock would hang past the watchdog.
	done := make(chan struct{})
	go func() {
		defer close(done)
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				pay(app.server.URL, tokenA, b.ID, 5) //nolint:errcheck
			}()
			go func() {
				defer wg.Done()
				pay(app.server.URL, tokenB, a.ID, 5) //nolint:errcheck
			}()
		}
		wg.Wait()
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("opposing transfers did not complete, possible deadlock")
	}

	sum := app.store.balance(a.ID) + app.store.balance(b.ID)
	require.Equal(t, int64(400), sum)
}
