package session

import (
	"sort"

	"github.com/samber/lo"

	"github.com/thereayou/club3-chat/internal/models"
)

// Timeline локальная лента переписки. Порядок - по времени сообщения,
// при равном времени - по порядку вставки. Не потокобезопасна.
type Timeline struct {
	messages []models.Message
}

func NewTimeline() *Timeline {
	return &Timeline{}
}

// Add добавляет живое сообщение, если такого еще нет (эхо собственной отправки)
func (t *Timeline) Add(msg models.Message) bool {
	if lo.ContainsBy(t.messages, msg.SameAs) {
		return false
	}
	t.messages = append(t.messages, msg)
	t.sort()
	return true
}

// Merge вливает историю из лога так, будто она была загружена до входа в
// комнату: записи лога встают перед живыми, а каждое живое сообщение
// поглощает не больше одной совпавшей записи лога.
func (t *Timeline) Merge(history []models.Message) int {
	live := t.messages
	absorbed := make([]bool, len(live))

	merged := make([]models.Message, 0, len(history)+len(live))
	added := 0

	for _, msg := range history {
		merged = append(merged, msg)

		if i := unabsorbed(live, absorbed, msg); i >= 0 {
			absorbed[i] = true
			continue
		}
		added++
	}

	for i, msg := range live {
		if !absorbed[i] {
			merged = append(merged, msg)
		}
	}

	t.messages = merged
	t.sort()
	return added
}

// unabsorbed индекс первого живого сообщения, совпавшего с msg и еще не
// поглотившего запись лога, или -1
func unabsorbed(live []models.Message, absorbed []bool, msg models.Message) int {
	for i, m := range live {
		if !absorbed[i] && m.SameAs(msg) {
			return i
		}
	}
	return -1
}

func (t *Timeline) sort() {
	sort.SliceStable(t.messages, func(i, j int) bool {
		return t.messages[i].Timestamp.Before(t.messages[j].Timestamp)
	})
}

// Messages копия ленты
func (t *Timeline) Messages() []models.Message {
	out := make([]models.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Timeline) Len() int {
	return len(t.messages)
}
