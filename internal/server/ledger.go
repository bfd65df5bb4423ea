package server

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	creditKeyPrefix   = "credits:"
	inFlightKeyPrefix = "inflight:"
)

// Ledger はゲストのセッションごとの残りクレジットと処理中フラグを管理します。
// クレジットの有効期間は最初の消費から ttl の間で、期限が切れると満タンに戻ります。
type Ledger struct {
	mu          sync.Mutex
	store       *cache.Cache
	credits     int
	ttl         time.Duration
	inFlightTTL time.Duration
}

// NewLedger は Ledger を作成します。inFlightTTL は処理中フラグが残り続けないための上限です。
func NewLedger(credits int, ttl, inFlightTTL time.Duration) *Ledger {
	cleanup := ttl / 4
	if cleanup <= 0 {
		cleanup = time.Minute
	}
	return &Ledger{
		store:       cache.New(ttl, cleanup),
		credits:     credits,
		ttl:         ttl,
		inFlightTTL: inFlightTTL,
	}
}

// Remaining は残りクレジットを返します。
func (l *Ledger) Remaining(session string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n, _ := l.remaining(session)
	return n
}

func (l *Ledger) remaining(session string) (int, time.Duration) {
	v, exp, ok := l.store.GetWithExpiration(creditKeyPrefix + session)
	if !ok {
		return l.credits, l.ttl
	}
	d := l.ttl
	if !exp.IsZero() {
		d = time.Until(exp)
	}
	return v.(int), d
}

func (l *Ledger) set(session string, n int, d time.Duration) {
	if d <= 0 {
		d = l.ttl
	}
	l.store.Set(creditKeyPrefix+session, n, d)
}

// Take はクレジットを1つ消費します。残りが無ければ false です。
func (l *Ledger) Take(session string) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n, d := l.remaining(session)
	if n <= 0 {
		return 0, false
	}
	l.set(session, n-1, d)
	return n - 1, true
}

// Refund は消費したクレジットを1つ戻します。上限を超えては戻しません。
func (l *Ledger) Refund(session string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n, d := l.remaining(session)
	if n < l.credits {
		n++
		l.set(session, n, d)
	}
	return n
}

// Begin はセッションの処理中フラグを立てます。すでに処理中なら false です。
func (l *Ledger) Begin(session string) bool {
	return l.store.Add(inFlightKeyPrefix+session, struct{}{}, l.inFlightTTL) == nil
}

// End は処理中フラグを下ろします。
func (l *Ledger) End(session string) {
	l.store.Delete(inFlightKeyPrefix + session)
}
