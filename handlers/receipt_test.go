package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"p9e.in/saf/config"
	"p9e.in/saf/models"
)

func TestMemoLanguage(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "EN"},
		{"EN", "EN"},
		{"HN", "HN"},
		{"hn", "HN"},
		{"hi", "HN"},
		{"hi-IN,en;q=0.5", "HN"},
		{"en-US,hi;q=0.3", "EN"},
		{"fr", "EN"},
		{"not a language!!", "EN"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MemoLanguage(tt.in))
		})
	}
}

func demoReceipt(t *testing.T, db *gorm.DB) models.PaymentReceipt {
	t.Helper()
	var p models.PaymentReceipt
	require.NoError(t, db.Where("tran_no = ?", "TRN/DEMO/0001").First(&p).Error)
	return p
}

func demoMemo(t *testing.T, db *gorm.DB) models.SamMemo {
	t.Helper()
	var m models.SamMemo
	require.NoError(t, db.Where("memo_no = ?", "SAM/DEMO/0001").First(&m).Error)
	return m
}

func TestPaymentReceipt(t *testing.T) {
	db := setup(t)
	p := demoReceipt(t, db)

	req := newRequest(t, db, phoneULBTC, http.MethodPost, "/x", idRequest{ID: p.ID.String()}, nil)
	rec, env := serve(t, PaymentReceipt, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var view PaymentReceiptView
	decodeData(t, env, &view)
	assert.Equal(t, "TRN/DEMO/0001", view.TranNo)
	assert.Equal(t, "SAF/DEMO/0001", view.SafNo)
	assert.Equal(t, "Ravi Kumar", view.OwnerName)
	assert.Equal(t, "5380.00", view.Amount)
	assert.NotEmpty(t, view.AmountInWords)
	assert.Nil(t, view.Instrument)
	assert.Equal(t, []AmountLine{
		{"Holding Tax", 4800},
		{"Education Cess", 240},
		{"Health Cess", 240},
	}, view.TaxHeads)
	assert.Equal(t, []AmountLine{{"Late Assessment Penalty", 100}}, view.FineRebate)
	assert.Equal(t, config.App.FrontendURL+"/saf/payment-receipt/"+p.ID.String(), view.QRURL)
	assert.Equal(t, "Ranchi Municipal Corporation", view.UlbDtl.UlbName)
	assert.Equal(t, "1800-570-1235", view.UlbDtl.TollFreeNo)
}

func TestPaymentReceiptCheque(t *testing.T) {
	db := setup(t)
	p := demoReceipt(t, db)
	require.NoError(t, db.Model(&p).Updates(map[string]any{
		"payment_mode": "cheque",
		"cheque_no":    "004512",
		"bank_name":    "State Bank",
	}).Error)

	req := newRequest(t, db, phoneULBTC, http.MethodPost, "/x", idRequest{ID: p.ID.String()}, nil)
	_, env := serve(t, PaymentReceipt, req)
	var view PaymentReceiptView
	decodeData(t, env, &view)
	require.NotNil(t, view.Instrument)
	assert.Equal(t, "Cheque", view.Instrument.Label)
	assert.Equal(t, "004512", view.Instrument.Number)
	assert.Equal(t, "State Bank", view.Instrument.BankName)
}

func TestPaymentReceiptNotFound(t *testing.T) {
	db := setup(t)
	req := newRequest(t, db, phoneULBTC, http.MethodPost, "/x", idRequest{ID: uuid.NewString()}, nil)
	rec, _ := serve(t, PaymentReceipt, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMemoReceipt(t *testing.T) {
	db := setup(t)
	memo := demoMemo(t, db)

	tests := []struct {
		name        string
		lang        string
		header      string
		wantLang    string
		wantUlb     string
		wantMemoNo  string
		wantFirstTx string
	}{
		{"default english", "", "", "EN", "Ranchi Municipal Corporation", "Memo No.", "House Tax"},
		{"hindi by code", "HN", "", "HN", "राँची नगर निगम", "मेमो सं०", "गृह कर"},
		{"hindi by header", "", "hi-IN,hi;q=0.9", "HN", "राँची नगर निगम", "मेमो सं०", "गृह कर"},
		{"body wins over header", "EN", "hi", "EN", "Ranchi Municipal Corporation", "Memo No.", "House Tax"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newRequest(t, db, phoneULBTC, http.MethodPost, "/x", memoRequest{ID: memo.ID.String(), Lang: tt.lang}, nil)
			if tt.header != "" {
				req.Header.Set("Accept-Language", tt.header)
			}
			rec, env := serve(t, MemoReceipt, req)
			require.Equal(t, http.StatusOK, rec.Code)

			var view MemoView
			decodeData(t, env, &view)
			assert.Equal(t, tt.wantLang, view.Lang)
			assert.Equal(t, tt.wantUlb, view.UlbName)
			assert.Equal(t, tt.wantMemoNo, view.Labels["memoNo"])
			require.Len(t, view.Taxes, 6)
			assert.Equal(t, tt.wantFirstTx, view.Taxes[0].HeadName)
			assert.Equal(t, 305.0, view.TotalTax)
			assert.Equal(t, "1/2016-2017", view.Effective)
			assert.Empty(t, view.OldHoldingNo)
			assert.Equal(t, "050110000000001", view.NewHoldingNo)
			assert.True(t, strings.HasSuffix(view.QRURL, "/saf/sam-memo/"+memo.ID.String()+"/"+tt.wantLang))
		})
	}
}

func TestMemoReceiptTotalFallsBackToSum(t *testing.T) {
	db := setup(t)
	memo := demoMemo(t, db)
	require.NoError(t, db.Model(&memo).Update("quarterly_tax", 0).Error)

	req := newRequest(t, db, phoneULBTC, http.MethodPost, "/x", memoRequest{ID: memo.ID.String()}, nil)
	_, env := serve(t, MemoReceipt, req)
	var view MemoView
	decodeData(t, env, &view)
	assert.Equal(t, 305.0, view.TotalTax)
}
