// Package resistor 色环电阻计算器：根据阻值推导标准四环/五环色环序列。
// 纯函数实现，无共享状态，可被任意请求并发调用。
package resistor

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// bandColors 标准色环颜色表，下标即有效数字/倍率指数
var bandColors = []string{
	"Black", "Brown", "Red", "Orange", "Yellow",
	"Green", "Blue", "Violet", "Grey", "White",
}

// GoldTolerance 容差色环固定为金色（±5%），不建模容差输入
const GoldTolerance = "Gold (±5%)"

// Bands 一个阻值对应的四环与五环色环序列
type Bands struct {
	FourBand []string `json:"four_band"`
	FiveBand []string `json:"five_band"`
}

// ColorCode 计算阻值（单位Ω）对应的色环序列。
// 阻值必须为正有限值，且落在单位数倍率可表示的范围内（约1Ω到10GΩ），
// 否则返回nil表示无法表示，由调用方决定如何上报。
func ColorCode(ohms float64) *Bands {
	if math.IsNaN(ohms) || math.IsInf(ohms, 0) || ohms <= 0 {
		return nil
	}

	four, ok := fourBand(ohms)
	if !ok {
		return nil
	}
	five, ok := fiveBand(ohms)
	if !ok {
		return nil
	}

	return &Bands{FourBand: four, FiveBand: five}
}

// fourBand 反复乘除10把阻值归一化到[1,100)，向下取整提取两位有效数字。
// 倍率指数超出0-8（阻值低于1Ω或达到10GΩ）视为不可表示。
func fourBand(ohms float64) ([]string, bool) {
	v := ohms
	exp := 0
	for v >= 100 {
		v /= 10
		exp++
	}
	for v < 1 {
		v *= 10
		exp--
	}

	if exp < 0 || exp > 8 {
		return nil, false
	}

	m := int(math.Floor(v))
	d1 := m / 10
	d2 := m % 10
	return []string{bandColors[d1], bandColors[d2], bandColors[exp], GoldTolerance}, true
}

// fiveBand 同样的归一化但目标为[1,1000)，提取三位有效数字。
// 倍率色环沿用四环的指数（即五环指数+1），两种表示共用一个倍率。
func fiveBand(ohms float64) ([]string, bool) {
	v := ohms
	exp := 0
	for v >= 1000 {
		v /= 10
		exp++
	}
	for v < 1 {
		v *= 10
		exp--
	}

	mult := exp + 1
	if mult < 0 || mult > 9 {
		return nil, false
	}

	m := int(math.Floor(v))
	d1 := m / 100
	d2 := m / 10 % 10
	d3 := m % 10
	return []string{bandColors[d1], bandColors[d2], bandColors[d3], bandColors[mult], GoldTolerance}, true
}

// ohmTokenPattern 匹配数字及紧随其后的数量级后缀（k/K、M/mega、G/g）
var ohmTokenPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)(mega|[kKMGg])?`)

// suffixMultipliers 后缀到倍数的映射；小写m（毫）有歧义，故不识别
var suffixMultipliers = map[string]float64{
	"k":    1e3,
	"K":    1e3,
	"M":    1e6,
	"mega": 1e6,
	"G":    1e9,
	"g":    1e9,
}

// ExtractOhmValues 从自由文本中提取候选阻值（已归一化为Ω）。
// 解析失败或非有限的token被丢弃；数值相等的token按首次出现去重，
// 返回顺序与文本中的出现顺序一致。
func ExtractOhmValues(text string) []float64 {
	matches := ohmTokenPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	values := make([]float64, 0, len(matches))
	seen := make(map[float64]bool, len(matches))
	for _, m := range matches {
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			continue
		}
		if mult, ok := suffixMultipliers[m[2]]; ok {
			value *= mult
		}
		if seen[value] {
			continue
		}
		seen[value] = true
		values = append(values, value)
	}
	return values
}

// FormatAnswer 将可计算的阻值逐行格式化为色环答案。
// 第二个返回值为false表示没有任何阻值可以计算，调用方应降级为兜底回答。
func FormatAnswer(values []float64) (string, bool) {
	lines := make([]string, 0, len(values))
	for _, v := range values {
		bands := ColorCode(v)
		if bands == nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%.0f Ω: 4-band: %s; 5-band: %s",
			math.Round(v),
			strings.Join(bands.FourBand, " - "),
			strings.Join(bands.FiveBand, " - ")))
	}
	if len(lines) == 0 {
		return "", false
	}
	return strings.Join(lines, "\n"), true
}
