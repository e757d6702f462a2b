// Package sse 提供面向行的 SSE 增量解码
//
// 上游流式响应按任意大小的块到达，一行 `data: {...}` 可能被拆在两次读取里。
// LineDecoder 负责缓存不完整的行，跨多次 Feed 拼接出完整行。
package sse

import "strings"

// Done 流结束哨兵，约定与 OpenAI 流式格式一致
const Done = "[DONE]"

// LineDecoder 增量行解码器
// 零值即可使用，不做任何协议解析，只负责切行
type LineDecoder struct {
	buf strings.Builder
}

// Feed 喂入一块字节，返回其中所有完整的行（已去除行尾 \n 与 \r）
// 末尾未结束的半行会被缓存，留待下次 Feed 补全
func (d *LineDecoder) Feed(p []byte) []string {
	if len(p) == 0 {
		return nil
	}
	d.buf.Write(p)

	data := d.buf.String()
	idx := strings.LastIndexByte(data, '\n')
	if idx < 0 {
		return nil
	}

	// 保留最后一个换行之后的半行
	rest := data[idx+1:]
	d.buf.Reset()
	d.buf.WriteString(rest)

	lines := strings.Split(data[:idx], "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Rest 返回缓存中尚未结束的半行（流关闭时调用）
func (d *LineDecoder) Rest() string {
	return strings.TrimSuffix(d.buf.String(), "\r")
}

// Data 提取一行的 data 载荷
// 空行、注释行（以 : 开头）以及其他字段行返回 ok=false
func Data(line string) (payload string, ok bool) {
	line = strings.TrimSuffix(line, "\r")
	if line == "" || strings.HasPrefix(line, ":") {
		return "", false
	}
	if rest, found := strings.CutPrefix(line, "data:"); found {
		return strings.TrimPrefix(rest, " "), true
	}
	return "", false
}
