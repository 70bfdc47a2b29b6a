package market

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticProvider_CompanyMetrics(t *testing.T) {
	p := NewStaticProvider()
	ctx := context.Background()

	m, err := p.CompanyMetrics(ctx, "apple")
	require.NoError(t, err)
	assert.True(t, m.Success)
	assert.Equal(t, "AAPL", m.Ticker)
	assert.Equal(t, 150.00, m.Price)
	assert.Equal(t, 25.0, m.PERatio)
	assert.Equal(t, "Technology", m.Sector)
	assert.False(t, m.Timestamp.IsZero())
}

func TestStaticProvider_UnknownCompany(t *testing.T) {
	p := NewStaticProvider()

	m, err := p.CompanyMetrics(context.Background(), "Initech")
	require.NoError(t, err)
	assert.False(t, m.Success)
	assert.Equal(t, "Initech", m.Company)
	assert.Contains(t, m.Error, "no data available")
}

func TestStaticProvider_PriceHistory(t *testing.T) {
	p := NewStaticProvider()

	h, err := p.PriceHistory(context.Background(), "apple", "1y")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", h.Ticker)
	assert.Equal(t, "1y", h.Period)
	assert.Equal(t, 150.00, h.EndPrice)

	_, err = p.PriceHistory(context.Background(), "Initech", "1y")
	assert.Error(t, err)
}

func TestStaticProvider_RecentEarnings(t *testing.T) {
	p := NewStaticProvider()

	e, err := p.RecentEarnings(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", e.Ticker)
	assert.True(t, e.EPSBeat)
	assert.NotEmpty(t, e.Quarter)
}

func TestStaticProvider_Compare(t *testing.T) {
	p := NewStaticProvider()

	cmp, err := p.Compare(context.Background(), []string{"apple", "microsoft", "Initech"})
	require.NoError(t, err)
	require.Len(t, cmp.Companies, 3)
	assert.True(t, cmp.Companies[0].Success)
	assert.True(t, cmp.Companies[1].Success)
	assert.False(t, cmp.Companies[2].Success)
}

func TestStaticProvider_WithMetricsOverride(t *testing.T) {
	p := NewStaticProvider(WithMetrics(map[string]Metrics{
		"ACME": {Success: true, Ticker: "ACME", Company: "Acme Corp", Price: 12.34},
	}))

	m, err := p.CompanyMetrics(context.Background(), "ACME")
	require.NoError(t, err)
	assert.Equal(t, 12.34, m.Price)

	// The built-in fixtures are replaced, not merged.
	m, err = p.CompanyMetrics(context.Background(), "apple")
	require.NoError(t, err)
	assert.False(t, m.Success)
}

func TestStaticProvider_CancelledContext(t *testing.T) {
	p := NewStaticProvider()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.CompanyMetrics(ctx, "apple")
	assert.ErrorIs(t, err, context.Canceled)
}
