package service

// truncateRunes 超过 n 个字符时截断并追加 "..."。
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
