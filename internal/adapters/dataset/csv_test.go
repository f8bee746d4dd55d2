package dataset_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alejandrodnm/offtake/internal/adapters/dataset"
	"github.com/alejandrodnm/offtake/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `Settlement_Date,Technology,Reference_Type,Strike_Price_GBP_Per_MWh,Market_Reference_Price_GBP_Per_MWh,CFD_Generation_MWh,CFD_Payments_GBP,Avoided_GHG_tonnes_CO2e,Price_Spread_Strike_vs_Market,Price_Spread_Strike_vs_IMRP,Extra
2019-03-01,Offshore Wind,IMRP,120.5,50.5,1000,70000,250,70,68,x
2024-06-01 00:00:00,Solar PV,BMRP,60,,200,,40,,,y
2061-01-01T00:00:00Z,Onshore Wind,IMRP,70,80,10,-100,3,-10,-11,z
`

func TestParse_AllColumns(t *testing.T) {
	recs, err := dataset.Parse(context.Background(), strings.NewReader(sample), domain.DateWindow{})
	require.NoError(t, err)
	require.Len(t, recs, 3)

	r := recs[0]
	assert.Equal(t, 2019, r.Year())
	assert.Equal(t, "Offshore Wind", r.Technology)
	assert.Equal(t, "IMRP", r.ReferenceType)
	assert.Equal(t, 120.5, r.StrikePrice)
	assert.Equal(t, 50.5, r.MarketPrice)
	assert.Equal(t, 1000.0, r.Generation)
	assert.Equal(t, 70000.0, r.Payments)
	assert.Equal(t, 250.0, r.AvoidedGHG)
	assert.Equal(t, 70.0, r.SpreadVsMarket)
	assert.Equal(t, 68.0, r.SpreadVsIMRP)

	// celdas vacías → 0
	assert.Equal(t, 0.0, recs[1].MarketPrice)
	assert.Equal(t, 0.0, recs[1].Payments)
	assert.Equal(t, 2061, recs[2].Year())
}

func TestParse_Window(t *testing.T) {
	window := domain.DateWindow{
		From: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2060, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	recs, err := dataset.Parse(context.Background(), strings.NewReader(sample), window)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Solar PV", recs[0].Technology)
}

func TestParse_ColumnOrderIndependent(t *testing.T) {
	in := "Technology,Settlement_Date,CFD_Generation_MWh\nWind,2022-01-01,42\n"
	recs, err := dataset.Parse(context.Background(), strings.NewReader(in), domain.DateWindow{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Wind", recs[0].Technology)
	assert.Equal(t, 42.0, recs[0].Generation)
}

func TestParse_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := dataset.Parse(ctx, strings.NewReader(""), domain.DateWindow{})
	assert.ErrorIs(t, err, dataset.ErrMissingColumn)

	_, err = dataset.Parse(ctx, strings.NewReader("Technology\nWind\n"), domain.DateWindow{})
	assert.ErrorIs(t, err, dataset.ErrMissingColumn)

	_, err = dataset.Parse(ctx, strings.NewReader("Settlement_Date\nnot-a-date\n"), domain.DateWindow{})
	assert.ErrorContains(t, err, "line 2")

	_, err = dataset.Parse(ctx, strings.NewReader("Settlement_Date,CFD_Payments_GBP\n2022-01-01,abc\n"), domain.DateWindow{})
	assert.ErrorContains(t, err, "CFD_Payments_GBP")
}

func TestCSVDataset_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfd.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	recs, err := dataset.NewCSVDataset(path, domain.DateWindow{}).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 3)

	_, err = dataset.NewCSVDataset(filepath.Join(t.TempDir(), "missing.csv"), domain.DateWindow{}).Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
