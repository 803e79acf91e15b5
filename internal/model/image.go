package model

// ImageAnalysis 是图片分析结果。目前为固定的示例分析，图片本身存入对象存储。
type ImageAnalysis struct {
	Health          string   `json:"health"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
	ImageURL        string   `json:"image_url"`
}
