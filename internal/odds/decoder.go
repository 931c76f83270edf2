package odds

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// 盘口原文形如 "2.5 ... 1.92*100h ... 1.96*100a"：数字后接 "*<位数><标记>"，
// 标记 h = 主队/大球，a = 客队/小球，d = 平局
var (
	taggedPattern    = regexp.MustCompile(`([\d.]+)\*\d+h|([\d.]+)\*\d+a|([\d.]+)\*\d+d`)
	homePricePattern = regexp.MustCompile(`([-\d.]+)\*\d+h`)
	awayPricePattern = regexp.MustCompile(`([-\d.]+)\*\d+a`)
)

// 让球方标记
const (
	SideHome = "h"
	SideAway = "a"
)

// minSidedTokens 盘口数值 + 倒数第三个词的让球方标记
const minSidedTokens = 3

// Tagged 按标记扫描得到的三个价格（原文字符串），未匹配为 nil
type Tagged struct {
	Home *string
	Away *string
	Draw *string
}

// DecodeTagged 扫描第一条原文中所有带标记的数字；同一标记后出现的覆盖先出现的
func DecodeTagged(blobs []string) Tagged {
	var t Tagged
	if len(blobs) == 0 {
		return t
	}
	for _, m := range taggedPattern.FindAllStringSubmatch(blobs[0], -1) {
		if m[1] != "" {
			v := m[1]
			t.Home = &v
		}
		if m[2] != "" {
			v := m[2]
			t.Away = &v
		}
		if m[3] != "" {
			v := m[3]
			t.Draw = &v
		}
	}
	return t
}

// ParsedMarket 解析后的盘口。Line 为显示形式，TopLine/BottomLine 为上下盘标签
type ParsedMarket struct {
	Line       string
	TopLine    string
	BottomLine string
	Side       string // 原文中的让球方标记，可能为空
	Home       *float64
	Away       *float64
	Draw       *float64
}

// Complete 持久化所需字段是否齐全
func (m *ParsedMarket) Complete() bool {
	return m != nil && m.Line != "" && m.TopLine != "" && m.BottomLine != "" &&
		m.Home != nil && m.Away != nil
}

// DecodeSided 解析让球/大小球盘口：第一个词为盘口数值，倒数第三个词为让球方标记。
// 标记为 a 时下盘持有原盘口、上盘取镜像；其余情况上盘持有原盘口。
// 价格取第一个 h/a 标记的数字。原文缺失、不足三个词或盘口不是十进制数时返回 nil
func DecodeSided(blobs []string) *ParsedMarket {
	if len(blobs) == 0 {
		return nil
	}
	text := blobs[0]
	parts := strings.Fields(text)
	if len(parts) < minSidedTokens {
		return nil
	}
	// NaN、Inf、十六进制浮点不算盘口
	if _, err := decimal.NewFromString(parts[0]); err != nil {
		return nil
	}

	line := FormatHandicap(parts[0])
	m := &ParsedMarket{Line: line}
	if s := parts[len(parts)-3]; s == SideHome || s == SideAway {
		m.Side = s
	}
	if m.Side == SideAway {
		m.TopLine, m.BottomLine = MirrorLabel(line), line
	} else {
		m.TopLine, m.BottomLine = line, MirrorLabel(line)
	}

	m.Home = firstPrice(homePricePattern, text)
	m.Away = firstPrice(awayPricePattern, text)
	return m
}

// DecodeMoneyline 1X2：h → 主胜，d → 平局，a → 客胜
func DecodeMoneyline(blobs []string) *ParsedMarket {
	t := DecodeTagged(blobs)
	return &ParsedMarket{
		Home: parsePrice(t.Home),
		Away: parsePrice(t.Away),
		Draw: parsePrice(t.Draw),
	}
}

func firstPrice(re *regexp.Regexp, text string) *float64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return parsePrice(&m[1])
}

func parsePrice(s *string) *float64 {
	if s == nil {
		return nil
	}
	v, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// FormatPrice 价格显示形式，nil 为空串
func FormatPrice(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
