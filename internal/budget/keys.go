package budget

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"mylg-backend/internal/models"

	"github.com/google/uuid"
)

var (
	seqSuffixRe = regexp.MustCompile(`-(\d+)$`)
	nonSlugRe   = regexp.MustCompile(`[^a-z0-9-]`)
	spaceRe     = regexp.MustCompile(`\s+`)
)

func NewLineItemID() string {
	return "LINE-" + uuid.NewString()
}

func NewHeaderID() string {
	return "HEADER-" + uuid.NewString()
}

func NewBudgetID() string {
	return uuid.NewString()
}

// Slugify - proje başlığından elementKey öneki üretir
// "Storefront Remodel" -> "storefront-remodel"
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = spaceRe.ReplaceAllString(s, "-")
	return nonSlugRe.ReplaceAllString(s, "")
}

func seqSuffix(key string) (int, bool) {
	m := seqSuffixRe.FindStringSubmatch(key)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// NextElementKey - proje genelinde sıradaki insan-okur anahtar: <slug>-0007
func NextElementKey(projectTitle string, items []models.BudgetLineItem) string {
	slug := Slugify(projectTitle)
	max := 0
	for _, it := range items {
		if n, ok := seqSuffix(it.ElementKey); ok && n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s-%04d", slug, max+1)
}

// NextElementID - kategori içinde sıradaki anahtar: <KATEGORI>-0003.
// Kategori boşsa boş döner.
func NextElementID(category string, items []models.BudgetLineItem) string {
	if category == "" {
		return ""
	}
	max := 0
	for _, it := range items {
		if it.Category != category {
			continue
		}
		if n, ok := seqSuffix(it.ElementID); ok && n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s-%04d", category, max+1)
}

// NormalizeGroup - alan/fatura grubu adları trim + büyük harfe çekilir
func NormalizeGroup(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
