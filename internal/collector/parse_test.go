package collector

import "testing"

const sampleQuoteJS = `jsonpgz({"fundcode":"000001","name":"华夏成长混合","jzrq":"2024-01-10","dwjz":"1.5000","gsz":"1.5230","gszzl":"1.53","gztime":"2024-01-11 14:30"});`

func TestParseQuoteJS(t *testing.T) {
	snap, err := parseQuoteJS(sampleQuoteJS)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Code != "000001" || snap.Name != "华夏成长混合" {
		t.Errorf("identity: %s / %s", snap.Code, snap.Name)
	}
	if snap.ConfirmedNav == nil || *snap.ConfirmedNav != 1.5 {
		t.Errorf("confirmedNav = %v, want 1.5", snap.ConfirmedNav)
	}
	if snap.ConfirmedNavDate != "2024-01-10" {
		t.Errorf("confirmedNavDate = %q", snap.ConfirmedNavDate)
	}
	if snap.EstimateNav == nil || *snap.EstimateNav != 1.523 {
		t.Errorf("estimateNav = %v, want 1.523", snap.EstimateNav)
	}
	if snap.EstimateChangePct == nil || *snap.EstimateChangePct != 1.53 {
		t.Errorf("estimateChangePct = %v, want 1.53", snap.EstimateChangePct)
	}
}

func TestParseQuoteJS_EmptyFieldsStayNil(t *testing.T) {
	snap, err := parseQuoteJS(`jsonpgz({"fundcode":"000002","name":"x","jzrq":"","dwjz":"","gsz":"","gszzl":""});`)
	if err != nil {
		t.Fatal(err)
	}
	if snap.ConfirmedNav != nil || snap.EstimateNav != nil || snap.EstimateChangePct != nil {
		t.Error("empty strings must coerce to nil, not zero")
	}
}

func TestParseQuoteJS_Garbage(t *testing.T) {
	for _, text := range []string{"", "<html>blocked</html>", `jsonpgz();`} {
		if _, err := parseQuoteJS(text); err == nil {
			t.Errorf("%q: expected an error", text)
		}
	}
}

func TestParseHistoryJS(t *testing.T) {
	// 1704758400000 = 2024-01-09 00:00 CST, spaced one day apart.
	js := `var Data_netWorthTrend = [` +
		`{"x":1704758400000,"y":1.45,"equityReturn":-0.5,"unitMoney":""},` +
		`{"x":1704844800000,"y":1.50,"equityReturn":3.45,"unitMoney":""},` +
		`{"x":1704844800000,"y":1.50,"equityReturn":3.45,"unitMoney":""}];` +
		`var Data_grandTotal = [];`
	points, err := parseHistoryJS(js)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 deduplicated points, got %d", len(points))
	}
	if points[0].Date != "2024-01-09" || points[1].Date != "2024-01-10" {
		t.Errorf("dates: %s, %s", points[0].Date, points[1].Date)
	}
	if points[1].Nav != 1.5 {
		t.Errorf("nav = %v", points[1].Nav)
	}
	if points[0].ChangePct == nil || *points[0].ChangePct != -0.5 {
		t.Errorf("changePct = %v", points[0].ChangePct)
	}
}

func TestParseTencentChangePct(t *testing.T) {
	text := `v_s_sh600519="1~贵州茅台~600519~1688.00~12.00~0.72~54321~917~~21210.0";` + "\n" +
		`v_s_sz000858="1~五粮液~000858~150.00~-1.50~-0.99~12345~185~~5800.0";`
	m := parseTencentChangePct(text)
	if m["600519"] != 0.72 {
		t.Errorf("600519 = %v, want 0.72", m["600519"])
	}
	if m["000858"] != -0.99 {
		t.Errorf("000858 = %v, want -0.99", m["000858"])
	}
}

func TestParseTopHoldings(t *testing.T) {
	content := `<table><tbody>` +
		`<tr><td>1</td><td><a>600519</a></td><td><a>贵州茅台</a></td><td>相关</td><td>0.72%</td><td>估值</td><td>9.50%</td></tr>` +
		`<tr><td>2</td><td><a>000858</a></td><td><a>五粮液</a></td><td>相关</td><td>-0.99%</td><td>估值</td><td>7.20%</td></tr>` +
		`</tbody></table>`
	ws := parseTopHoldings(content)
	if len(ws) != 2 {
		t.Fatalf("expected 2 holdings, got %d", len(ws))
	}
	if ws[0].Code != "600519" || ws[0].RatioPct != 9.5 {
		t.Errorf("row 0: %+v", ws[0])
	}
}

func TestIsValidFundCode(t *testing.T) {
	valid := []string{"000001", "161725"}
	invalid := []string{"", "00001", "0000011", "abc123", "00000a"}
	for _, c := range valid {
		if !IsValidFundCode(c) {
			t.Errorf("%q should be valid", c)
		}
	}
	for _, c := range invalid {
		if IsValidFundCode(c) {
			t.Errorf("%q should be invalid", c)
		}
	}
}
