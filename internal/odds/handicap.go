package odds

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	quarter      = decimal.NewFromFloat(0.25)
	four         = decimal.NewFromInt(4)
	dualLineLow  = decimal.Zero
	dualLineHigh = decimal.NewFromInt(6)
)

// FormatHandicap 盘口显示形式：
//   - 非 0.25 整数倍：原样返回
//   - 0.25 ~ 5.75 之间的四分之一盘：双盘口 "下限-上限"，如 0.25 → "0-0.5"，1.75 → "1.5-2"
//   - 其余：十进制字符串，整数不带 ".0"
func FormatHandicap(raw string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	quarters := d.Mul(four)
	if !quarters.IsInteger() {
		return raw
	}
	if isSplitLine(d, quarters) {
		return d.Sub(quarter).String() + "-" + d.Add(quarter).String()
	}
	return d.String()
}

// isSplitLine 四分之一盘（x.25 / x.75）且在 (0, 6) 内
func isSplitLine(d, quarters decimal.Decimal) bool {
	if !d.GreaterThan(dualLineLow) || !d.LessThan(dualLineHigh) {
		return false
	}
	return quarters.IntPart()%2 == 1
}

// MirrorLabel 对方盘口标签："-(line)"；已是 "-(x)" 取 x，普通负数去掉负号
func MirrorLabel(line string) string {
	switch {
	case line == "":
		return ""
	case isNegated(line):
		return line[2 : len(line)-1]
	case strings.HasPrefix(line, "-") && isNumber(line):
		return line[1:]
	default:
		return "-(" + line + ")"
	}
}

// SpreadsheetLiteral 写入表格前的标签形式。含 "-" 的非数字标签（双盘口、"-(0-0.5)"）
// 加前导 "'"，避免被表格软件当成公式或日期；"-(1.5)" 写成数字 -1.5
func SpreadsheetLiteral(label string) string {
	if label == "" {
		return ""
	}
	if d, err := decimal.NewFromString(label); err == nil {
		return d.String()
	}
	if isNegated(label) {
		if d, err := decimal.NewFromString(label[2 : len(label)-1]); err == nil {
			return d.Neg().String()
		}
		return "'" + label
	}
	if strings.Contains(label, "-") {
		return "'" + label
	}
	return label
}

// NeedsLiteralPrefix 标签写入时是否带 "'" 前缀
func NeedsLiteralPrefix(label string) bool {
	return strings.HasPrefix(SpreadsheetLiteral(label), "'")
}

func isNegated(s string) bool {
	return len(s) > 3 && strings.HasPrefix(s, "-(") && strings.HasSuffix(s, ")")
}

func isNumber(s string) bool {
	_, err := decimal.NewFromString(s)
	return err == nil
}
