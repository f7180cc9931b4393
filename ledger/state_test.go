// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ledger_test

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blinklabs-io/crowdfund/campaign"
	"github.com/blinklabs-io/crowdfund/database/models"
	"github.com/blinklabs-io/crowdfund/event"
	"github.com/blinklabs-io/crowdfund/ledger"
	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const testReserve = 3_480_000

var testNonce atomic.Uint64

type testLedger struct {
	*ledger.LedgerState
	t *testing.T
}

func newTestLedger(
	t *testing.T,
	cfg ledger.LedgerStateConfig,
) *testLedger {
	t.Helper()
	cfg.FaucetEnabled = true
	ls, err := ledger.NewLedgerState(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, ls.Close())
	})
	return &testLedger{LedgerState: ls, t: t}
}

// fund creates a wallet holding lamports
func (tl *testLedger) fund(lamports uint64) solana.PrivateKey {
	tl.t.Helper()
	key := newTestKey(tl.t)
	_, err := tl.Airdrop(context.Background(), key.PublicKey(), lamports)
	require.NoError(tl.t, err)
	return key
}

func (tl *testLedger) campaignAddress(authority solana.PublicKey) solana.PublicKey {
	tl.t.Helper()
	addr, _, err := tl.DeriveCampaignAddress(authority)
	require.NoError(tl.t, err)
	return addr
}

func (tl *testLedger) submit(
	key solana.PrivateKey,
	accounts []solana.PublicKey,
	ix campaign.Instruction,
) (*ledger.Result, error) {
	tl.t.Helper()
	tx := tl.sign(key, accounts, ix)
	return tl.Process(context.Background(), tx)
}

func (tl *testLedger) sign(
	key solana.PrivateKey,
	accounts []solana.PublicKey,
	ix campaign.Instruction,
) *ledger.Transaction {
	tl.t.Helper()
	msg, err := ledger.NewMessage(
		tl.ProgramID(),
		key.PublicKey(),
		accounts,
		ix,
		testNonce.Add(1),
	)
	require.NoError(tl.t, err)
	tx, err := ledger.SignTransaction(msg, key)
	require.NoError(tl.t, err)
	return tx
}

func (tl *testLedger) create(
	key solana.PrivateKey,
	args campaign.CreateArgs,
) (*ledger.Result, error) {
	authority := key.PublicKey()
	return tl.submit(
		key,
		[]solana.PublicKey{tl.campaignAddress(authority), authority},
		args,
	)
}

func (tl *testLedger) donate(
	key solana.PrivateKey,
	authority solana.PublicKey,
	amount uint64,
) (*ledger.Result, error) {
	return tl.submit(
		key,
		[]solana.PublicKey{tl.campaignAddress(authority), authority, key.PublicKey()},
		campaign.DonateArgs{Amount: amount},
	)
}

func (tl *testLedger) withdraw(
	key solana.PrivateKey,
	authority solana.PublicKey,
	amount uint64,
) (*ledger.Result, error) {
	return tl.submit(
		key,
		[]solana.PublicKey{tl.campaignAddress(authority), key.PublicKey()},
		campaign.WithdrawArgs{Amount: amount},
	)
}

func (tl *testLedger) close(
	key solana.PrivateKey,
	authority solana.PublicKey,
) (*ledger.Result, error) {
	return tl.submit(
		key,
		[]solana.PublicKey{tl.campaignAddress(authority), key.PublicKey()},
		campaign.CloseArgs{},
	)
}

func (tl *testLedger) balance(addr solana.PublicKey) uint64 {
	tl.t.Helper()
	ret, err := tl.Balance(addr)
	require.NoError(tl.t, err)
	return ret
}

var testCreateArgs = campaign.CreateArgs{
	Name:         "Test Campaign",
	Description:  "Test Description",
	TargetAmount: 5,
}

func TestCampaignLifecycle(t *testing.T) {
	tl := newTestLedger(t, ledger.LedgerStateConfig{})
	require.Equal(t, uint64(testReserve), tl.Reserve())
	x := tl.fund(10_000_000)
	y := tl.fund(1_000)
	xPub := x.PublicKey()
	campaignAddr := tl.campaignAddress(xPub)

	// A: create
	res, err := tl.create(x, testCreateArgs)
	require.NoError(t, err)
	assert.Equal(t, campaign.InstructionKindCreate, res.Kind)
	rec, lamports, err := tl.Campaign(campaignAddr)
	require.NoError(t, err)
	assert.Equal(t, xPub, rec.Authority)
	assert.Equal(t, "Test Campaign", rec.Name)
	assert.Equal(t, "Test Description", rec.Description)
	assert.Equal(t, uint64(5), rec.TargetAmount)
	assert.Equal(t, uint64(0), rec.AmountDonated)
	assert.Equal(t, uint64(0), rec.AmountWithdrawn)
	assert.Equal(t, uint64(testReserve), lamports)
	assert.Equal(t, uint64(10_000_000-testReserve), tl.balance(xPub))

	// B: donate by another identity
	_, err = tl.donate(y, xPub, 10)
	require.NoError(t, err)
	rec, lamports, err = tl.Campaign(campaignAddr)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), rec.AmountDonated)
	assert.Equal(t, uint64(testReserve+10), lamports)
	assert.Equal(t, uint64(990), tl.balance(y.PublicKey()))

	// C: withdraw everything available
	_, err = tl.withdraw(x, xPub, 10)
	require.NoError(t, err)
	rec, lamports, err = tl.Campaign(campaignAddr)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), rec.AmountWithdrawn)
	assert.Equal(t, uint64(0), rec.Available())
	assert.Equal(t, uint64(testReserve), lamports)
	assert.Equal(t, uint64(10_000_000-testReserve+10), tl.balance(xPub))

	// D: nothing left to withdraw
	_, err = tl.withdraw(x, xPub, 1)
	require.ErrorIs(t, err, campaign.ErrInsufficientCampaignBalance)

	// E: zero donation leaves state unchanged
	_, err = tl.donate(y, xPub, 0)
	require.ErrorIs(t, err, campaign.ErrInvalidAmount)
	after, afterLamports, err := tl.Campaign(campaignAddr)
	require.NoError(t, err)
	assert.Equal(t, rec, after)
	assert.Equal(t, lamports, afterLamports)

	// F: close returns everything, then nothing is left to close
	res, err = tl.close(x, xPub)
	require.NoError(t, err)
	assert.Nil(t, res.Record)
	_, _, err = tl.Campaign(campaignAddr)
	require.ErrorIs(t, err, campaign.ErrCampaignNotFound)
	assert.Equal(t, uint64(10_000_010), tl.balance(xPub))
	_, err = tl.Account(campaignAddr)
	require.Error(t, err)
	_, err = tl.close(x, xPub)
	require.ErrorIs(t, err, campaign.ErrCampaignNotFound)

	// The address is reusable by the same authority
	_, err = tl.create(x, testCreateArgs)
	require.NoError(t, err)
}

func TestCreateRejections(t *testing.T) {
	tl := newTestLedger(t, ledger.LedgerStateConfig{})
	x := tl.fund(10_000_000)
	poor := tl.fund(testReserve - 1)

	_, err := tl.create(x, campaign.CreateArgs{
		Name: strings.Repeat("n", campaign.MaxNameLength+1),
	})
	require.ErrorIs(t, err, campaign.ErrCampaignNameTooLong)
	_, err = tl.create(x, campaign.CreateArgs{
		Name:        "Test Campaign",
		Description: strings.Repeat("d", campaign.MaxDescriptionLength+1),
	})
	require.ErrorIs(t, err, campaign.ErrCampaignDescriptionTooLong)
	_, err = tl.create(poor, testCreateArgs)
	require.ErrorIs(t, err, campaign.ErrInsufficientFunds)

	// Substituting another authority's address
	_, err = tl.submit(
		x,
		[]solana.PublicKey{tl.campaignAddress(poor.PublicKey()), x.PublicKey()},
		testCreateArgs,
	)
	require.ErrorIs(t, err, campaign.ErrInvalidOwner)

	// Maximum lengths are accepted
	_, err = tl.create(x, campaign.CreateArgs{
		Name:        strings.Repeat("n", campaign.MaxNameLength),
		Description: strings.Repeat("d", campaign.MaxDescriptionLength),
	})
	require.NoError(t, err)
	_, err = tl.create(x, testCreateArgs)
	require.ErrorIs(t, err, campaign.ErrCampaignAlreadyExists)

	// None of the rejections moved value
	assert.Equal(t, uint64(10_000_000-testReserve), tl.balance(x.PublicKey()))
	assert.Equal(t, uint64(testReserve-1), tl.balance(poor.PublicKey()))
}

func TestAuthorityChecks(t *testing.T) {
	tl := newTestLedger(t, ledger.LedgerStateConfig{})
	x := tl.fund(10_000_000)
	y := tl.fund(10_000_000)
	xPub := x.PublicKey()
	_, err := tl.create(x, testCreateArgs)
	require.NoError(t, err)
	_, err = tl.donate(y, xPub, 100)
	require.NoError(t, err)

	// Withdraw and close by someone else
	_, err = tl.withdraw(y, xPub, 1)
	require.ErrorIs(t, err, campaign.ErrUnauthorized)
	_, err = tl.close(y, xPub)
	require.ErrorIs(t, err, campaign.ErrUnauthorized)

	// Donating while naming the wrong authority
	_, err = tl.submit(
		y,
		[]solana.PublicKey{tl.campaignAddress(xPub), y.PublicKey(), y.PublicKey()},
		campaign.DonateArgs{Amount: 1},
	)
	require.ErrorIs(t, err, campaign.ErrInvalidOwner)

	// Signer missing from its account slot
	_, err = tl.submit(
		y,
		[]solana.PublicKey{tl.campaignAddress(xPub), xPub},
		campaign.WithdrawArgs{Amount: 1},
	)
	require.ErrorIs(t, err, campaign.ErrUnauthorized)
	_, err = tl.submit(y, nil, campaign.WithdrawArgs{Amount: 1})
	require.ErrorIs(t, err, campaign.ErrMissingAccount)

	rec, _, err := tl.Campaign(tl.campaignAddress(xPub))
	require.NoError(t, err)
	assert.Equal(t, uint64(100), rec.AmountDonated)
	assert.Equal(t, uint64(0), rec.AmountWithdrawn)
}

func TestDonateRejections(t *testing.T) {
	tl := newTestLedger(t, ledger.LedgerStateConfig{})
	x := tl.fund(10_000_000)
	y := tl.fund(50)
	_, err := tl.donate(y, x.PublicKey(), 10)
	require.ErrorIs(t, err, campaign.ErrCampaignNotFound)
	_, err = tl.create(x, testCreateArgs)
	require.NoError(t, err)
	_, err = tl.donate(y, x.PublicKey(), 51)
	require.ErrorIs(t, err, campaign.ErrInsufficientFunds)
	// The authority may donate to its own campaign
	_, err = tl.donate(x, x.PublicKey(), 1)
	require.NoError(t, err)
}

func TestCloseWithOutstandingBalance(t *testing.T) {
	tl := newTestLedger(t, ledger.LedgerStateConfig{})
	x := tl.fund(testReserve)
	y := tl.fund(1_000)
	_, err := tl.create(x, testCreateArgs)
	require.NoError(t, err)
	_, err = tl.donate(y, x.PublicKey(), 700)
	require.NoError(t, err)
	res, err := tl.close(x, x.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), res.Lamports)
	assert.Equal(t, uint64(testReserve+700), tl.balance(x.PublicKey()))
}

func TestTransactionChecks(t *testing.T) {
	tl := newTestLedger(t, ledger.LedgerStateConfig{})
	x := tl.fund(10_000_000)
	authority := x.PublicKey()
	accounts := []solana.PublicKey{tl.campaignAddress(authority), authority}

	tx := tl.sign(x, accounts, testCreateArgs)
	res, err := tl.Process(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, tx.Signature, res.Signature)

	// Replays are rejected before touching state
	_, err = tl.Process(context.Background(), tx)
	require.ErrorIs(t, err, campaign.ErrDuplicateSignature)

	entry, err := tl.InstructionBySignature(tx.Signature)
	require.NoError(t, err)
	assert.Equal(t, res.Sequence, entry.Sequence)
	assert.Equal(t, campaign.InstructionKindCreate.String(), entry.Kind)

	tx = tl.sign(x, accounts, campaign.WithdrawArgs{Amount: 1})
	tx.Message.Nonce++
	_, err = tl.Process(context.Background(), tx)
	require.ErrorIs(t, err, campaign.ErrInvalidSignature)

	msg, err := ledger.NewMessage(
		solana.TokenProgramID,
		authority,
		accounts,
		campaign.CloseArgs{},
		testNonce.Add(1),
	)
	require.NoError(t, err)
	tx, err = ledger.SignTransaction(msg, x)
	require.NoError(t, err)
	_, err = tl.Process(context.Background(), tx)
	require.ErrorIs(t, err, campaign.ErrInvalidInstruction)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = tl.Process(ctx, tl.sign(x, accounts, campaign.CloseArgs{}))
	require.ErrorIs(t, err, context.Canceled)
}

func TestJournal(t *testing.T) {
	tl := newTestLedger(t, ledger.LedgerStateConfig{})
	x := tl.fund(10_000_000)
	xPub := x.PublicKey()
	_, err := tl.create(x, testCreateArgs)
	require.NoError(t, err)
	_, err = tl.withdraw(x, xPub, 1)
	require.ErrorIs(t, err, campaign.ErrInsufficientCampaignBalance)

	entries, err := tl.Instructions(tl.campaignAddress(xPub), 10, false)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.InstructionResultOk, entries[0].Result)

	entries, err = tl.Instructions(tl.campaignAddress(xPub), 10, true)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.InstructionResultRejected, entries[0].Result)
	assert.Equal(
		t,
		uint32(campaign.ErrorCodeInsufficientCampaignBalance),
		entries[0].ErrorCode,
	)
	assert.Equal(t, models.InstructionResultOk, entries[1].Result)
	assert.Equal(t, campaign.InstructionKindCreate.String(), entries[1].Kind)
}

func TestExecuteTrustedSigner(t *testing.T) {
	tl := newTestLedger(t, ledger.LedgerStateConfig{})
	x := tl.fund(10_000_000)
	xPub := x.PublicKey()
	res, err := tl.Execute(
		context.Background(),
		ledger.TrustedSigner(xPub),
		[]solana.PublicKey{tl.campaignAddress(xPub), xPub},
		testCreateArgs,
	)
	require.NoError(t, err)
	assert.True(t, res.Signature.IsZero())
	assert.Equal(t, xPub, res.Record.Authority)

	_, err = tl.Execute(
		context.Background(),
		ledger.Signer{},
		[]solana.PublicKey{tl.campaignAddress(xPub), xPub},
		campaign.CloseArgs{},
	)
	require.ErrorIs(t, err, campaign.ErrUnauthorized)
}

func TestAirdrop(t *testing.T) {
	tl := newTestLedger(t, ledger.LedgerStateConfig{})
	x := tl.fund(10_000_000)
	_, err := tl.Airdrop(context.Background(), x.PublicKey(), 0)
	require.ErrorIs(t, err, campaign.ErrInvalidAmount)
	balance, err := tl.Airdrop(context.Background(), x.PublicKey(), 5)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_005), balance)

	// Campaign accounts cannot be topped up through the faucet
	_, err = tl.create(x, testCreateArgs)
	require.NoError(t, err)
	_, err = tl.Airdrop(
		context.Background(),
		tl.campaignAddress(x.PublicKey()),
		5,
	)
	require.ErrorIs(t, err, campaign.ErrAccountNotWriteable)

	ls, err := ledger.NewLedgerState(ledger.LedgerStateConfig{})
	require.NoError(t, err)
	defer ls.Close()
	_, err = ls.Airdrop(context.Background(), x.PublicKey(), 5)
	require.ErrorIs(t, err, campaign.ErrFaucetDisabled)
}

func TestEvents(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, createdCh := eb.Subscribe(event.CampaignCreatedEventType)
	_, donatedCh := eb.Subscribe(event.CampaignDonatedEventType)
	_, closedCh := eb.Subscribe(event.CampaignClosedEventType)
	tl := newTestLedger(t, ledger.LedgerStateConfig{EventBus: eb})
	x := tl.fund(10_000_000)
	y := tl.fund(100)
	xPub := x.PublicKey()
	campaignAddr := tl.campaignAddress(xPub)

	res, err := tl.create(x, testCreateArgs)
	require.NoError(t, err)
	evt := receiveEvent(t, createdCh)
	created, ok := evt.Data.(event.CampaignCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, campaignAddr, created.Address)
	assert.Equal(t, xPub, created.Authority)
	assert.Equal(t, uint64(testReserve), created.Reserve)
	assert.Equal(t, res.Sequence, created.Sequence)
	assert.Equal(t, res.Signature, created.Signature)

	// Rejected instructions are not announced
	_, err = tl.donate(y, xPub, 0)
	require.Error(t, err)
	_, err = tl.donate(y, xPub, 25)
	require.NoError(t, err)
	donated, ok := receiveEvent(t, donatedCh).Data.(event.CampaignDonatedEvent)
	require.True(t, ok)
	assert.Equal(t, uint64(25), donated.Amount)
	assert.Equal(t, y.PublicKey(), donated.Donor)

	_, err = tl.close(x, xPub)
	require.NoError(t, err)
	closed, ok := receiveEvent(t, closedCh).Data.(event.CampaignClosedEvent)
	require.True(t, ok)
	assert.Equal(t, uint64(testReserve+25), closed.Lamports)
}

func receiveEvent(t *testing.T, ch <-chan event.Event) event.Event {
	t.Helper()
	select {
	case evt := <-ch:
		return evt
	case <-time.After(1 * time.Second):
		t.Fatalf("timeout waiting for event")
	}
	return event.Event{}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	tl := newTestLedger(t, ledger.LedgerStateConfig{PromRegistry: reg})
	x := tl.fund(10_000_000)
	_, err := tl.create(x, testCreateArgs)
	require.NoError(t, err)
	_, err = tl.withdraw(x, x.PublicKey(), 1)
	require.Error(t, err)
	expected := `
# HELP crowdfund_active_campaigns number of active campaigns
# TYPE crowdfund_active_campaigns gauge
crowdfund_active_campaigns 1
`
	require.NoError(
		t,
		testutil.GatherAndCompare(
			reg,
			strings.NewReader(expected),
			"crowdfund_active_campaigns",
		),
	)
	// create ok, withdraw rejected and airdrop ok
	count, err := testutil.GatherAndCount(reg, "crowdfund_instructions_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

// rejectedCount returns crowdfund_instructions_total for a kind with
// result=rejected
func rejectedCount(t *testing.T, reg *prometheus.Registry, kind string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "crowdfund_instructions_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := make(map[string]string)
			for _, label := range metric.GetLabel() {
				labels[label.GetName()] = label.GetValue()
			}
			if labels["kind"] == kind &&
				labels["result"] == models.InstructionResultRejected {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestUndecodedTransactionRejections(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	prevProvider := otel.GetTracerProvider()
	otel.SetTracerProvider(
		sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)),
	)
	t.Cleanup(func() { otel.SetTracerProvider(prevProvider) })

	reg := prometheus.NewRegistry()
	tl := newTestLedger(t, ledger.LedgerStateConfig{PromRegistry: reg})
	x := tl.fund(10_000_000)
	authority := x.PublicKey()
	accounts := []solana.PublicKey{tl.campaignAddress(authority), authority}

	// Signed for another program
	msg, err := ledger.NewMessage(
		solana.TokenProgramID,
		authority,
		accounts,
		campaign.CloseArgs{},
		testNonce.Add(1),
	)
	require.NoError(t, err)
	tx, err := ledger.SignTransaction(msg, x)
	require.NoError(t, err)
	_, err = tl.Process(context.Background(), tx)
	require.ErrorIs(t, err, campaign.ErrInvalidInstruction)
	assert.Equal(t, float64(1), rejectedCount(t, reg, "unknown"))

	// Bad signature
	tx = tl.sign(x, accounts, campaign.CloseArgs{})
	tx.Message.Nonce++
	_, err = tl.Process(context.Background(), tx)
	require.ErrorIs(t, err, campaign.ErrInvalidSignature)
	assert.Equal(t, float64(2), rejectedCount(t, reg, "unknown"))

	var errorSpans int
	for _, span := range recorder.Ended() {
		if span.Name() != "ledger.unknown" {
			continue
		}
		assert.Equal(t, codes.Error, span.Status().Code)
		errorSpans++
	}
	assert.Equal(t, 2, errorSpans)

	// Neither transaction reached the campaign history
	entries, err := tl.Instructions(accounts[0], 0, true)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPersistence(t *testing.T) {
	dataDir := t.TempDir()
	cfg := ledger.LedgerStateConfig{DataDir: dataDir, FaucetEnabled: true}
	ls, err := ledger.NewLedgerState(cfg)
	require.NoError(t, err)
	key := newTestKey(t)
	authority := key.PublicKey()
	_, err = ls.Airdrop(context.Background(), authority, 10_000_000)
	require.NoError(t, err)
	campaignAddr, _, err := ls.DeriveCampaignAddress(authority)
	require.NoError(t, err)
	_, err = ls.Execute(
		context.Background(),
		ledger.TrustedSigner(authority),
		[]solana.PublicKey{campaignAddr, authority},
		testCreateArgs,
	)
	require.NoError(t, err)
	require.NoError(t, ls.Close())

	reg := prometheus.NewRegistry()
	cfg.PromRegistry = reg
	ls, err = ledger.NewLedgerState(cfg)
	require.NoError(t, err)
	defer ls.Close()
	rec, _, err := ls.Campaign(campaignAddr)
	require.NoError(t, err)
	assert.Equal(t, "Test Campaign", rec.Name)
	mirror, err := ls.Database().GetCampaignMirrorByAuthority(authority, nil)
	require.NoError(t, err)
	assert.Equal(t, campaignAddr.Bytes(), mirror.Address)
	require.NoError(
		t,
		testutil.GatherAndCompare(
			reg,
			strings.NewReader(`
# HELP crowdfund_active_campaigns number of active campaigns
# TYPE crowdfund_active_campaigns gauge
crowdfund_active_campaigns 1
`),
			"crowdfund_active_campaigns",
		),
	)
}

func TestConcurrentDonations(t *testing.T) {
	tl := newTestLedger(t, ledger.LedgerStateConfig{})
	x := tl.fund(10_000_000)
	xPub := x.PublicKey()
	_, err := tl.create(x, testCreateArgs)
	require.NoError(t, err)
	const donors = 16
	keys := make([]solana.PrivateKey, donors)
	for i := range keys {
		keys[i] = tl.fund(1_000)
	}
	txs := make([]*ledger.Transaction, donors)
	for i, key := range keys {
		txs[i] = tl.sign(
			key,
			[]solana.PublicKey{tl.campaignAddress(xPub), xPub, key.PublicKey()},
			campaign.DonateArgs{Amount: 100},
		)
	}
	var wg sync.WaitGroup
	errs := make(chan error, donors)
	for _, tx := range txs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tl.Process(context.Background(), tx); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	rec, lamports, err := tl.Campaign(tl.campaignAddress(xPub))
	require.NoError(t, err)
	assert.Equal(t, uint64(donors*100), rec.AmountDonated)
	assert.Equal(t, uint64(testReserve+donors*100), lamports)
}

func TestConcurrentCampaigns(t *testing.T) {
	tl := newTestLedger(t, ledger.LedgerStateConfig{})
	const authorities = 8
	keys := make([]solana.PrivateKey, authorities)
	for i := range keys {
		keys[i] = tl.fund(10_000_000)
	}
	txs := make([]*ledger.Transaction, authorities)
	for i, key := range keys {
		txs[i] = tl.sign(
			key,
			[]solana.PublicKey{
				tl.campaignAddress(key.PublicKey()),
				key.PublicKey(),
			},
			testCreateArgs,
		)
	}
	var wg sync.WaitGroup
	var failures atomic.Int32
	for _, tx := range txs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tl.Process(context.Background(), tx); err != nil {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(0), failures.Load())
	count, err := tl.Database().CountCampaigns(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(authorities), count)
}

// TestRandomOperations drives a campaign with random instructions and checks
// the record invariants after each one
func TestRandomOperations(t *testing.T) {
	tl := newTestLedger(t, ledger.LedgerStateConfig{})
	x := tl.fund(100_000_000)
	xPub := x.PublicKey()
	donors := []solana.PrivateKey{tl.fund(50_000), tl.fund(50_000), x}
	campaignAddr := tl.campaignAddress(xPub)
	_, err := tl.create(x, testCreateArgs)
	require.NoError(t, err)
	rng := rand.New(rand.NewPCG(1, 2)) //nolint:gosec // deterministic test input
	for range 200 {
		before, beforeLamports, err := tl.Campaign(campaignAddr)
		require.NoError(t, err)
		amount := rng.Uint64N(500)
		switch rng.IntN(3) {
		case 0:
			donor := donors[rng.IntN(len(donors))]
			_, err = tl.donate(donor, xPub, amount)
		case 1:
			_, err = tl.withdraw(x, xPub, amount)
		default:
			// Withdrawal attempt by a donor
			_, err = tl.withdraw(donors[0], xPub, amount)
		}
		after, afterLamports, getErr := tl.Campaign(campaignAddr)
		require.NoError(t, getErr)
		if err != nil {
			assert.Equal(t, before, after)
			assert.Equal(t, beforeLamports, afterLamports)
		}
		assert.LessOrEqual(t, after.AmountWithdrawn, after.AmountDonated)
		assert.Equal(t, uint64(testReserve)+after.Available(), afterLamports)
		assert.Equal(t, before.Authority, after.Authority)
		assert.Equal(t, before.Name, after.Name)
	}
}
