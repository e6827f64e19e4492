package export

import "strings"

var (
	chineseDigits    = []string{"零", "壹", "贰", "叁", "肆", "伍", "陆", "柒", "捌", "玖"}
	chineseGroupUnit = []string{"", "万", "亿", "万亿"}
)

// ChineseAmount renders an amount in cents as upper-case Chinese currency (大写金额),
// e.g. 12356 -> "壹佰贰拾叁元伍角陆分"
func ChineseAmount(cents int64) string {
	if cents == 0 {
		return "零元整"
	}

	var b strings.Builder
	if cents < 0 {
		b.WriteString("负")
		cents = -cents
	}

	yuan := cents / 100
	jiao := cents / 10 % 10
	fen := cents % 10

	if yuan > 0 {
		b.WriteString(chineseInteger(yuan))
		b.WriteString("元")
	}

	switch {
	case jiao == 0 && fen == 0:
		b.WriteString("整")
	case jiao == 0:
		if yuan > 0 {
			b.WriteString("零")
		}
		b.WriteString(chineseDigits[fen] + "分")
	default:
		b.WriteString(chineseDigits[jiao] + "角")
		if fen != 0 {
			b.WriteString(chineseDigits[fen] + "分")
		}
	}

	return b.String()
}

// chineseInteger converts n > 0 in groups of four digits
func chineseInteger(n int64) string {
	var groups []int64
	for n > 0 {
		groups = append(groups, n%10000)
		n /= 10000
	}

	var b strings.Builder
	pendingZero := false
	for i := len(groups) - 1; i >= 0; i-- {
		g := groups[i]
		if g == 0 {
			pendingZero = b.Len() > 0
			continue
		}
		if b.Len() > 0 && (pendingZero || g < 1000) {
			b.WriteString("零")
		}
		b.WriteString(chineseGroup(g))
		b.WriteString(chineseGroupUnit[i])
		pendingZero = false
	}
	return b.String()
}

// chineseGroup converts 1..9999 without leading zero
func chineseGroup(g int64) string {
	var b strings.Builder
	zero := false
	for _, place := range []struct {
		div  int64
		unit string
	}{{1000, "仟"}, {100, "佰"}, {10, "拾"}, {1, ""}} {
		d := g / place.div % 10
		if d == 0 {
			zero = b.Len() > 0
			continue
		}
		if zero {
			b.WriteString("零")
			zero = false
		}
		b.WriteString(chineseDigits[d] + place.unit)
	}
	return b.String()
}
