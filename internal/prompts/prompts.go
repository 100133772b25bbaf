package prompts

import (
	"fmt"
	"strings"

	"NewsLabeler/internal/labels"
)

// MaxContentLength bounds the article body embedded in a prompt to keep
// request size and cost predictable.
const MaxContentLength = 2000

// System returns the system turn: role definition, the enumerated taxonomy,
// classification rules and the required JSON output shape.
func System() string {
	var sb strings.Builder
	for i, name := range labels.List() {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, name)
	}

	return fmt.Sprintf(`Bạn là một chuyên gia phân loại văn bản trong lĩnh vực Tài nguyên và Môi trường (TNMT) của Việt Nam.

NHIỆM VỤ: Phân loại multi-label cho bài báo tiếng Việt vào một hoặc nhiều trong %d danh mục sau:

%s
QUY TẮC PHÂN LOẠI:
1. Mỗi bài báo có thể thuộc 1 hoặc nhiều danh mục (multi-label)
2. Phân tích cẩn thận tiêu đề, mô tả và nội dung
3. Ưu tiên các nhãn chính xác và cụ thể nhất
4. Chỉ sử dụng nhãn "Khác" khi không phù hợp với %d danh mục khác
5. Đánh giá độ tin cậy cho mỗi nhãn (0.0-1.0)

ĐỊNH DẠNG OUTPUT: JSON array với format:
[
  {"label": "tên nhãn", "confidence": 0.85},
  {"label": "tên nhãn khác", "confidence": 0.75}
]`, labels.Count(), sb.String(), labels.Count()-1)
}

// FewShot returns worked multi-label examples placed ahead of the record.
func FewShot() string {
	return `VÍ DỤ:

Ví dụ 1:
Tiêu đề: "Ô nhiễm nguồn nước do chất thải công nghiệp tại TP.HCM"
Mô tả: "Tình trạng ô nhiễm nguồn nước ngày càng nghiêm trọng"
Nội dung: "Các nhà máy xả thải trực tiếp xuống sông, ảnh hưởng đến chất lượng nước sinh hoạt..."

Output: [
  {"label": "Môi trường", "confidence": 0.95},
  {"label": "Tài nguyên nước", "confidence": 0.90}
]

Ví dụ 2:
Tiêu đề: "Ứng dụng viễn thám giám sát rừng tự nhiên"
Mô tả: "Sử dụng ảnh vệ tinh để theo dõi diện tích rừng"
Nội dung: "Công nghệ viễn thám giúp phát hiện sớm các khu vực bị phá rừng, bảo vệ đa dạng sinh học..."

Output: [
  {"label": "Viễn thám", "confidence": 0.98},
  {"label": "Đa dạng sinh học", "confidence": 0.85}
]

Ví dụ 3:
Tiêu đề: "Quy hoạch sử dụng đất nông nghiệp tỉnh An Giang"
Mô tả: "Kế hoạch sử dụng đất giai đoạn 2021-2025"
Nội dung: "Quy hoạch chi tiết việc sử dụng đất cho sản xuất nông nghiệp, bảo đảm hiệu quả kinh tế..."

Output: [
  {"label": "Đất đai", "confidence": 0.92}
]`
}

// Classification renders the record to classify. Content beyond
// MaxContentLength is truncated with an ellipsis marker.
func Classification(title, description, content string) string {
	content = Truncate(content, MaxContentLength)

	return fmt.Sprintf(`Phân loại bài báo sau vào các danh mục phù hợp:

TIÊU ĐỀ: %s

MÔ TẢ: %s

NỘI DUNG: %s

Hãy phân tích và trả về kết quả theo định dạng JSON đã yêu cầu:`, title, description, content)
}

// FormatReminder is the closing format-enforcement turn fragment.
func FormatReminder() string {
	return `QUAN TRỌNG:
- Chỉ trả về JSON array hợp lệ
- Không giải thích thêm
- Confidence score từ 0.0 đến 1.0
- Tên nhãn phải chính xác theo danh sách đã cho`
}

// User assembles the complete user turn for one record.
func User(title, description, content string) string {
	return FewShot() + "\n\n" + Classification(title, description, content) + "\n\n" + FormatReminder()
}

// Truncate caps s at max characters, appending "..." when cut. The cut is
// rune-based so multi-byte Vietnamese text is never split mid-character.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
