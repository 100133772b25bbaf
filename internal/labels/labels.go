package labels

// Taxonomy of TNMT (Tài nguyên và Môi trường) news subtopics. The set is
// fixed: classification output is filtered against it and anything outside
// is dropped with a warning.

var ordered = []string{
	"Biển - hải đảo",
	"Thông tin chung",
	"Môi trường",
	"Địa chất - Khoáng sản",
	"Đất đai",
	"Đa dạng sinh học",
	"Viễn thám",
	"Quản lý chất thải rắn",
	"Đo đạc và bản đồ",
	"Khí tượng thủy văn - Biến đổi khí hậu",
	"Tài nguyên nước",
	"Khác",
}

// Descriptions holds the per-label explanation injected into the system prompt.
var Descriptions = map[string]string{
	"Biển - hải đảo":                        "Các vấn đề liên quan đến biển, đại dương, hải đảo, tài nguyên biển, kinh tế biển",
	"Thông tin chung":                       "Thông tin tổng hợp, chính sách, quy định chung về tài nguyên môi trường",
	"Môi trường":                            "Ô nhiễm môi trường, bảo vệ môi trường, môi trường sống, sinh thái",
	"Địa chất - Khoáng sản":                 "Khảo sát địa chất, khai thác khoáng sản, tài nguyên địa chất",
	"Đất đai":                               "Quản lý đất đai, quy hoạch sử dụng đất, chất lượng đất",
	"Đa dạng sinh học":                      "Bảo tồn thiên nhiên, động thực vật hoang dã, khu bảo tồn",
	"Viễn thám":                             "Ứng dụng viễn thám, ảnh vệ tinh, GIS trong tài nguyên môi trường",
	"Quản lý chất thải rắn":                 "Thu gom, xử lý chất thải, rác thải, tái chế",
	"Đo đạc và bản đồ":                      "Đo đạc địa hình, lập bản đồ, định vị GPS",
	"Khí tượng thủy văn - Biến đổi khí hậu": "Dự báo thời tiết, biến đổi khí hậu, thiên tai",
	"Tài nguyên nước":                       "Quản lý nguồn nước, cấp thoát nước, xử lý nước thải",
	"Khác":                                  "Các chủ đề khác không thuộc các danh mục trên",
}

// Keywords lists signal words per label, used as classification hints.
var Keywords = map[string][]string{
	"Biển - hải đảo":                        {"biển", "hải đảo", "đại dương", "tàu thuyền", "cảng", "thủy sản", "kinh tế biển"},
	"Thông tin chung":                       {"chính sách", "quy định", "luật", "nghị định", "thông tư", "hướng dẫn"},
	"Môi trường":                            {"ô nhiễm", "môi trường", "sinh thái", "xanh", "bảo vệ", "khí thải"},
	"Địa chất - Khoáng sản":                 {"địa chất", "khoáng sản", "than", "dầu khí", "khai thác", "mỏ"},
	"Đất đai":                               {"đất đai", "sử dụng đất", "quy hoạch đất", "chất lượng đất", "canh tác"},
	"Đa dạng sinh học":                      {"đa dạng sinh học", "động vật", "thực vật", "bảo tồn", "rừng", "khu bảo tồn"},
	"Viễn thám":                             {"viễn thám", "vệ tinh", "GIS", "ảnh vệ tinh", "bản đồ số"},
	"Quản lý chất thải rắn":                 {"chất thải", "rác thải", "thu gom", "xử lý rác", "tái chế"},
	"Đo đạc và bản đồ":                      {"đo đạc", "bản đồ", "GPS", "địa hình", "trắc địa"},
	"Khí tượng thủy văn - Biến đổi khí hậu": {"khí tượng", "thời tiết", "biến đổi khí hậu", "lũ lụt", "hạn hán"},
	"Tài nguyên nước":                       {"nước", "cấp nước", "nước thải", "nguồn nước", "thủy lợi"},
	"Khác":                                  {},
}

var index = func() map[string]int {
	m := make(map[string]int, len(ordered))
	for i, name := range ordered {
		m[name] = i + 1
	}
	return m
}()

// List returns the taxonomy in its canonical order.
func List() []string {
	out := make([]string, len(ordered))
	copy(out, ordered)
	return out
}

// Count reports the number of labels in the taxonomy.
func Count() int {
	return len(ordered)
}

// IsValid reports whether name is a member of the taxonomy.
func IsValid(name string) bool {
	_, ok := index[name]
	return ok
}

// IDOf returns the 1-based taxonomy id for name, or -1 when unknown.
func IDOf(name string) int {
	if id, ok := index[name]; ok {
		return id
	}
	return -1
}

// ByID returns the label for a 1-based id, or an empty string when unknown.
func ByID(id int) string {
	if id < 1 || id > len(ordered) {
		return ""
	}
	return ordered[id-1]
}
