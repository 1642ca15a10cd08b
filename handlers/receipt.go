package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"p9e.in/saf/config"
	"p9e.in/saf/models"
	"p9e.in/saf/pkg/verification"
	"p9e.in/saf/utils"
)

// UlbDetails is the issuing body printed on receipts and memos
type UlbDetails struct {
	UlbName      string `json:"ulbName"`
	HindiUlbName string `json:"hindiUlbName"`
	LogoImg      string `json:"logoImg"`
	UlbURL       string `json:"ulbUrl"`
	TollFreeNo   string `json:"tollFreeNo"`
	Address      string `json:"address"`
}

// AmountLine is a tax head, fine or rebate with a non zero amount
type AmountLine struct {
	HeadName string  `json:"headName"`
	Amount   float64 `json:"amount"`
}

// PaymentReceiptView is the printable payment receipt
type PaymentReceiptView struct {
	TranNo             string       `json:"tranNo"`
	TranDate           string       `json:"tranDate"`
	Department         string       `json:"department"`
	AccountDescription string       `json:"accountDescription"`
	SafNo              string       `json:"safNo"`
	HoldingNo          string       `json:"holdingNo"`
	WardNo             string       `json:"wardNo"`
	NewWardNo          string       `json:"newWardNo"`
	OwnerName          string       `json:"ownerName"`
	Address            string       `json:"address"`
	PaymentMode        string       `json:"paymentMode"`
	Instrument         *Instrument  `json:"instrument,omitempty"`
	FromQtr            int          `json:"fromQtr"`
	FromFyear          string       `json:"fromFyear"`
	UptoQtr            int          `json:"uptoQtr"`
	UptoFyear          string       `json:"uptoFyear"`
	TaxHeads           []AmountLine `json:"taxHeads"`
	FineRebate         []AmountLine `json:"fineRebate"`
	Amount             string       `json:"amount"`
	AmountInWords      string       `json:"amountInWords"`
	ReceivedBy         string       `json:"receivedBy"`
	QRURL              string       `json:"qrUrl"`
	UlbDtl             UlbDetails   `json:"ulbDtl"`
}

// Instrument describes a cheque, DD or similar payment
type Instrument struct {
	Label      string `json:"label"`
	Number     string `json:"number"`
	Date       string `json:"date"`
	BankName   string `json:"bankName"`
	BranchName string `json:"branchName"`
}

// MemoView is the printable SAM memo in one language
type MemoView struct {
	Lang         string            `json:"lang"`
	Labels       map[string]string `json:"labels"`
	UlbName      string            `json:"ulbName"`
	MemoNo       string            `json:"memoNo"`
	MemoDate     string            `json:"memoDate"`
	Effective    string            `json:"effective"`
	OwnerName    string            `json:"ownerName"`
	PropAddress  string            `json:"propAddress"`
	OldHoldingNo string            `json:"oldHoldingNo"`
	NewHoldingNo string            `json:"newHoldingNo"`
	WardNo       string            `json:"wardNo"`
	NewWardNo    string            `json:"newWardNo"`
	Arv          float64           `json:"arv"`
	Taxes        []AmountLine      `json:"taxes"`
	TotalTax     float64           `json:"totalTax"`
	QRURL        string            `json:"qrUrl"`
	UlbDtl       UlbDetails        `json:"ulbDtl"`
}

type memoRequest struct {
	ID   string `json:"id" validate:"required,uuid"`
	Lang string `json:"lang" validate:"omitempty,max=35"`
}

func ulbDetails(u models.Ulb) UlbDetails {
	return UlbDetails{
		UlbName:      u.Name,
		HindiUlbName: u.NameHindi,
		LogoImg:      u.LogoURL,
		UlbURL:       u.Website,
		TollFreeNo:   u.TollFree,
		Address:      u.Address,
	}
}

func loadUlb(saf models.SafApplication) models.Ulb {
	var ulb models.Ulb
	q := config.DB
	if saf.UlbID != nil {
		q = q.Where("id = ?", *saf.UlbID)
	}
	q.First(&ulb)
	return ulb
}

// nonZero keeps the lines with an amount above zero
func nonZero(lines []AmountLine) []AmountLine {
	out := make([]AmountLine, 0, len(lines))
	for _, l := range lines {
		if l.Amount > 0 {
			out = append(out, l)
		}
	}
	return out
}

func ownerNames(saf models.SafApplication) string {
	names := make([]string, 0, len(saf.Owners))
	for _, o := range saf.Owners {
		names = append(names, o.OwnerName)
	}
	return strings.Join(names, ", ")
}

// PaymentReceipt godoc
// @Summary      Printable payment receipt
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Router       /api/property/payment-receipt [post]
func PaymentReceipt(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var p models.PaymentReceipt
	if err := config.DB.First(&p, "id = ?", req.ID).Error; err != nil {
		writeDBError(w, "receipt", err)
		return
	}
	saf, err := loadSaf(config.DB, p.SafID.String())
	if err != nil {
		writeDBError(w, "application", err)
		return
	}
	opts, err := LoadMasterOptions(config.DB)
	if err != nil {
		writeDBError(w, "master data", err)
		return
	}
	m := opts.MasterData()

	var fines []AmountLine
	if len(p.FineRebates) > 0 {
		var raw []models.FineRebate
		if err := json.Unmarshal(p.FineRebates, &raw); err != nil {
			writeDBError(w, "receipt", fmt.Errorf("decode fine rebates: %w", err))
			return
		}
		for _, f := range raw {
			fines = append(fines, AmountLine{HeadName: f.Label, Amount: f.Amount})
		}
	}

	view := PaymentReceiptView{
		TranNo:             p.TranNo,
		TranDate:           verification.FormatLocalDate(p.TranDate.Time()),
		Department:         "Revenue Section",
		AccountDescription: "Holding Tax & Others",
		SafNo:              saf.SafNo,
		HoldingNo:          saf.HoldingNo,
		WardNo:             m.Wards.Label(saf.WardMstrID),
		NewWardNo:          m.NewWards.Label(saf.NewWardMstrID),
		OwnerName:          ownerNames(saf),
		Address:            saf.PropAddress,
		PaymentMode:        p.PaymentMode,
		FromQtr:            p.FromQtr,
		FromFyear:          p.FromFy,
		UptoQtr:            p.UptoQtr,
		UptoFyear:          p.UptoFy,
		TaxHeads: nonZero([]AmountLine{
			{"Holding Tax", p.HoldingTax},
			{"Water Tax", p.WaterTax},
			{"Education Cess", p.EducationCess},
			{"Health Cess", p.HealthCess},
			{"Latrine Tax", p.LatrineTax},
			{"RWH", p.RwhPenalty},
		}),
		FineRebate:    nonZero(fines),
		Amount:        formatAmount(p.TotalAmount),
		AmountInWords: utils.AmountInWords(p.TotalAmount),
		ReceivedBy:    p.ReceivedBy,
		QRURL:         fmt.Sprintf("%s/saf/payment-receipt/%s", strings.TrimRight(config.App.FrontendURL, "/"), p.ID),
		UlbDtl:        ulbDetails(loadUlb(saf)),
	}
	if p.ChequeNo != "" {
		view.Instrument = &Instrument{
			Label:      verification.ToTitleCase(p.PaymentMode),
			Number:     p.ChequeNo,
			Date:       verification.FormatLocalDate(p.ChequeDate),
			BankName:   p.BankName,
			BranchName: p.BranchName,
		}
	}
	utils.WriteSuccess(w, http.StatusOK, "", view)
}

var memoLanguages = language.NewMatcher([]language.Tag{language.English, language.Hindi})

// MemoLanguage resolves a language code or Accept-Language value to EN or HN
func MemoLanguage(code string) string {
	code = strings.TrimSpace(code)
	if strings.EqualFold(code, "HN") {
		return "HN"
	}
	tags, _, err := language.ParseAcceptLanguage(code)
	if err != nil || len(tags) == 0 {
		return "EN"
	}
	_, idx, conf := memoLanguages.Match(tags...)
	if idx == 1 && conf != language.No {
		return "HN"
	}
	return "EN"
}

var memoLabels = map[string]map[string]string{
	"EN": {
		"notice":        "Notice of property tax customized under section 152(3) of Jharkhand Municipal Act-2011",
		"memoNo":        "Memo No.",
		"date":          "Date",
		"effective":     "Effective",
		"owner":         "Mr/Mrs/Ms",
		"address":       "Address",
		"oldHoldingNo":  "Old Holding Number",
		"newHoldingNo":  "your New Holding Number",
		"wardNo":        "in Ward No",
		"newWardNo":     "New Ward No",
		"slNo":          "SL. No.",
		"particulars":   "Particulars",
		"amount":        "Amount (in Rs.)",
		"total":         "Total Amount (per quarter)",
		"signApplicant": "To be signed by the Applicant",
		"note":          "Note",
	},
	"HN": {
		"notice":        "झारखण्ड नगरपालिका अधिनियम -2011 की धरा 152 (3) के अंतर्गत स्वनिर्धारित किये गए संपत्ति कर की सूचना |",
		"memoNo":        "मेमो सं०",
		"date":          "दिनांक",
		"effective":     "प्रभावी",
		"owner":         "श्री /श्रीमती /सुश्री",
		"address":       "पता",
		"oldHoldingNo":  "पुराना गृह सं०",
		"newHoldingNo":  "नया गृह सं०",
		"wardNo":        "पुराना वार्ड सं०",
		"newWardNo":     "नया वार्ड सं०",
		"slNo":          "क्रम स०",
		"particulars":   "ब्यौरे",
		"amount":        "राशि (in Rs.)",
		"total":         "कुल राशि (प्रति तिमाही )",
		"signApplicant": "आवेदक द्वारा हस्ताक्षर किए जाने के लिए",
		"note":          "नोट",
	},
}

var memoTaxHeads = map[string][6]string{
	"EN": {"House Tax", "Water Tax", "Latrine Tax", "RWH Penalty", "Education Cess", "Health Cess"},
	"HN": {"गृह कर", "जल कर", "शौचालय कर", "वर्षा जल संचयन जुर्माना", "शिक्षा उपकर", "स्वास्थ्य उपकर"},
}

// MemoReceipt godoc
// @Summary      Printable SAM memo in English or Hindi
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Router       /api/property/memo-receipt [post]
func MemoReceipt(w http.ResponseWriter, r *http.Request) {
	var req memoRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	lang := req.Lang
	if lang == "" {
		lang = r.Header.Get("Accept-Language")
	}
	code := MemoLanguage(lang)

	var memo models.SamMemo
	if err := config.DB.First(&memo, "id = ?", req.ID).Error; err != nil {
		writeDBError(w, "memo", err)
		return
	}
	saf, err := loadSaf(config.DB, memo.SafID.String())
	if err != nil {
		writeDBError(w, "application", err)
		return
	}
	opts, err := LoadMasterOptions(config.DB)
	if err != nil {
		writeDBError(w, "master data", err)
		return
	}
	m := opts.MasterData()
	ulb := ulbDetails(loadUlb(saf))

	heads := memoTaxHeads[code]
	taxes := []AmountLine{
		{heads[0], memo.HoldingTax},
		{heads[1], memo.WaterTax},
		{heads[2], memo.LatrineTax},
		{heads[3], memo.RwhPenalty},
		{heads[4], memo.EducationCess},
		{heads[5], memo.HealthCess},
	}
	total := memo.QuarterlyTax
	if total == 0 {
		for _, t := range taxes {
			total += t.Amount
		}
	}

	ulbName := ulb.UlbName
	if code == "HN" && ulb.HindiUlbName != "" {
		ulbName = ulb.HindiUlbName
	}
	utils.WriteSuccess(w, http.StatusOK, "", MemoView{
		Lang:         code,
		Labels:       memoLabels[code],
		UlbName:      ulbName,
		MemoNo:       memo.MemoNo,
		MemoDate:     verification.FormatLocalDate(memo.MemoDate.Time()),
		Effective:    fmt.Sprintf("%d/%s", memo.FromQtr, memo.FromFy),
		OwnerName:    ownerNames(saf),
		PropAddress:  saf.PropAddress,
		OldHoldingNo: "",
		NewHoldingNo: saf.HoldingNo,
		WardNo:       m.Wards.Label(saf.WardMstrID),
		NewWardNo:    m.NewWards.Label(saf.NewWardMstrID),
		Arv:          memo.Arv,
		Taxes:        taxes,
		TotalTax:     total,
		QRURL:        fmt.Sprintf("%s/saf/sam-memo/%s/%s", strings.TrimRight(config.App.FrontendURL, "/"), memo.ID, code),
		UlbDtl:       ulb,
	})
}
