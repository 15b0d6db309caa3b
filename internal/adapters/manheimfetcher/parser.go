package manheimfetcher

import (
	"bytes"
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jsamit27/ava/internal/core/domain"
	nethtml "golang.org/x/net/html"
)

var (
	cityStateZipRe = regexp.MustCompile(`([A-Za-z .'\-]+),\s*([A-Z]{2})\s+(\d{5}(?:-\d{4})?)$`)
	phoneRe        = regexp.MustCompile(`(\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4})`)
	pageNumRe      = regexp.MustCompile(`/page/(\d+)`)
	brRe           = regexp.MustCompile(`(?i)<br\s*/?>`)
	tagRe          = regexp.MustCompile(`<[^>]*>`)
	spaceRe        = regexp.MustCompile(`\s+`)
)

const locationDetailMarker = "/en/locations/us-locations/"

// TotalPages максимальный номер /page/N в ссылках пагинации, минимум 1
func TotalPages(doc *goquery.Document) int {
	maxN := 1
	doc.Find(`a[href*="/en/country/us-locations/page/"]`).Each(func(_ int, a *goquery.Selection) {
		m := pageNumRe.FindStringSubmatch(a.AttrOr("href", ""))
		if m == nil {
			return
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > maxN {
			maxN = n
		}
	})
	return maxN
}

// ParseLocationsPage разбирает карточки площадок. Если контейнеров карточек нет,
// страница режется на фрагменты от одного h3 до следующего.
func ParseLocationsPage(doc *goquery.Document, baseURL string) []domain.AuctionLocation {
	var out []domain.AuctionLocation

	containers := doc.Find(".single_location_container, .single-location_container")
	if containers.Length() > 0 {
		containers.Each(func(_ int, card *goquery.Selection) {
			if loc, ok := parseCard(card, baseURL); ok {
				out = append(out, loc)
			}
		})
		return out
	}

	doc.Find("h3").Each(func(_ int, h3 *goquery.Selection) {
		frag, err := goquery.NewDocumentFromReader(strings.NewReader(fragmentUntilNextH3(h3.Nodes[0])))
		if err != nil {
			return
		}
		if loc, ok := parseCard(frag.Selection, baseURL); ok {
			out = append(out, loc)
		}
	})
	return out
}

// fragmentUntilNextH3 HTML от h3 до следующего h3 в порядке обхода документа.
// Поддеревья, в которых нет h3, берутся целиком.
func fragmentUntilNextH3(h3 *nethtml.Node) string {
	var buf bytes.Buffer
	_ = nethtml.Render(&buf, h3)

	node := nextSkippingSubtree(h3)
	for node != nil {
		if isElement(node, "h3") {
			break
		}
		if containsH3(node) {
			node = node.FirstChild
			continue
		}
		_ = nethtml.Render(&buf, node)
		node = nextSkippingSubtree(node)
	}
	return buf.String()
}

func nextSkippingSubtree(n *nethtml.Node) *nethtml.Node {
	for ; n != nil; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}

func isElement(n *nethtml.Node, tag string) bool {
	return n.Type == nethtml.ElementNode && n.Data == tag
}

func isDescendant(n, ancestor *nethtml.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

func containsH3(n *nethtml.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c, "h3") || containsH3(c) {
			return true
		}
	}
	return false
}

func clean(s string) string {
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.Trim(s, " \"'\t\r\n")
}

// spacedText текст узла, где каждая граница тега считается пробелом
func spacedText(sel *goquery.Selection) string {
	h, err := goquery.OuterHtml(sel)
	if err != nil {
		return clean(sel.Text())
	}
	return clean(tagRe.ReplaceAllString(h, " "))
}

// splitBrLines делит блок адреса по <br> и выбрасывает "Get Directions"
func splitBrLines(sel *goquery.Selection) []string {
	h, err := goquery.OuterHtml(sel)
	if err != nil {
		return nil
	}
	var lines []string
	for _, part := range brRe.Split(h, -1) {
		line := clean(tagRe.ReplaceAllString(part, ""))
		lower := strings.ToLower(line)
		if line == "" || lower == "get directions" || lower == "directions" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// parseCityStateZip берет последнюю строку вида "City, ST ZIP", строки до нее - улица
func parseCityStateZip(lines []string) (city, state, zip, street string) {
	idx := -1
	for i := len(lines) - 1; i >= 0; i-- {
		if cityStateZipRe.MatchString(lines[i]) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return "", "", "", strings.Join(lines, ", ")
	}

	m := cityStateZipRe.FindStringSubmatch(lines[idx])
	var streetParts []string
	for _, l := range lines[:idx] {
		if l != "" {
			streetParts = append(streetParts, l)
		}
	}
	return clean(m[1]), m[2], m[3], strings.Join(streetParts, ", ")
}

// labelFor первый заголовок h4/h5/strong, содержащий слово
func labelFor(card *goquery.Selection, word string) *goquery.Selection {
	return card.Find("h4, h5, strong").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(strings.ToLower(spacedText(s)), word)
	}).First()
}

// nextBlock первый непустой p или div после label в порядке документа
func nextBlock(card, label *goquery.Selection) *goquery.Selection {
	if label.Length() == 0 {
		return nil
	}
	target := label.Nodes[0]
	seen := false
	var found *goquery.Selection
	card.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		n := s.Nodes[0]
		if n == target {
			seen = true
			return true
		}
		if !seen || (n.Data != "p" && n.Data != "div") {
			return true
		}
		if isDescendant(n, target) {
			return true
		}
		if strings.TrimSpace(s.Text()) != "" {
			found = s
			return false
		}
		return true
	})
	return found
}

func parseCard(card *goquery.Selection, baseURL string) (domain.AuctionLocation, bool) {
	name := spacedText(card.Find("h3").First())
	if name == "" {
		return domain.AuctionLocation{}, false
	}

	var lines []string
	if block := nextBlock(card, labelFor(card, "address")); block != nil {
		lines = splitBrLines(block)
	}
	if len(lines) == 0 {
		var last *goquery.Selection
		card.Find("p").Each(func(_ int, p *goquery.Selection) {
			if cityStateZipRe.MatchString(spacedText(p)) {
				last = p
			}
		})
		if last != nil {
			lines = splitBrLines(last)
		}
	}

	var city, state, zip, street string
	if len(lines) > 0 {
		city, state, zip, street = parseCityStateZip(lines)
	}

	phone := ""
	if block := nextBlock(card, labelFor(card, "phone")); block != nil {
		phone = phoneRe.FindString(spacedText(block))
	}
	if phone == "" {
		phone = phoneRe.FindString(spacedText(card))
	}

	website := ""
	card.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := a.AttrOr("href", "")
		if !strings.Contains(href, locationDetailMarker) {
			return true
		}
		website = absoluteURL(baseURL, href)
		return false
	})

	if street == "" && (city == "" || state == "") && website == "" {
		return domain.AuctionLocation{}, false
	}

	return domain.AuctionLocation{
		Name:          name,
		AddressStreet: clean(street),
		City:          clean(city),
		State:         clean(state),
		Zip:           clean(zip),
		Phone:         clean(phone),
		Website:       website,
	}, true
}

func absoluteURL(baseURL, href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
