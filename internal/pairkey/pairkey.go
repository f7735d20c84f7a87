package pairkey

import (
	"errors"
	"sort"
	"strings"
)

// Separator разделяет идентификаторы участников внутри ключа
const Separator = "_"

var ErrInvalidParticipant = errors.New("invalid participant id")

// Key симметричный ключ пары участников: и комната, и лог переписки
type Key string

// New строит ключ из двух идентификаторов. New(a, b) == New(b, a).
func New(a, b string) (Key, error) {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)

	for _, id := range []string{a, b} {
		if id == "" || strings.Contains(id, Separator) {
			return "", ErrInvalidParticipant
		}
	}

	ids := []string{a, b}
	sort.Strings(ids)

	return Key(strings.Join(ids, Separator)), nil
}

// MustNew как New, но паникует на некорректных идентификаторах
func MustNew(a, b string) Key {
	k, err := New(a, b)
	if err != nil {
		panic(err)
	}
	return k
}

// Parse проверяет строку, пришедшую от клиента (например roomId)
func Parse(raw string) (Key, error) {
	parts := strings.Split(raw, Separator)
	if len(parts) != 2 {
		return "", ErrInvalidParticipant
	}
	k, err := New(parts[0], parts[1])
	if err != nil {
		return "", err
	}
	if string(k) != raw {
		return "", ErrInvalidParticipant
	}
	return k, nil
}

// Participants возвращает участников в отсортированном порядке
func (k Key) Participants() (string, string) {
	a, b, _ := strings.Cut(string(k), Separator)
	return a, b
}

// Has проверяет, является ли id участником пары
func (k Key) Has(id string) bool {
	a, b := k.Participants()
	return id != "" && (id == a || id == b)
}

// Peer возвращает собеседника для id
func (k Key) Peer(id string) string {
	a, b := k.Participants()
	if id == a {
		return b
	}
	return a
}

func (k Key) String() string {
	return string(k)
}
