package manheimfetcher

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cardsPage = `<html><body>
<nav>
  <a href="/en/country/us-locations/page/2">2</a>
  <a href="/en/country/us-locations/page/3">3</a>
  <a href="/en/country/us-locations/page/next">next</a>
</nav>
<div class="single_location_container">
  <h3>Manheim Dallas</h3>
  <h4>Address</h4>
  <p>5333 W Kiest Blvd<br>Dallas, TX 75236<br><a href="#">Get Directions</a></p>
  <h4>Phone</h4>
  <p>(214) 330-1800</p>
  <a href="/en/locations/us-locations/manheim-dallas.html">Details</a>
</div>
<div class="single-location_container">
  <h3>Manheim Phoenix</h3>
  <p>Intro text</p>
  <p>3420 S 48th St<br/>Phoenix, AZ 85040</p>
  <p>Call 602.437.7000</p>
</div>
<div class="single_location_container">
  <h3>Coming soon</h3>
</div>
</body></html>`

const headingsPage = `<html><body><div class="content">
<h3>Manheim Nevada</h3>
<div><p>1 Auction Way<br>Reno, NV 89502</p></div>
<div class="wrap"><h3>Manheim Ohio</h3><p>Columbus, OH 43228</p><a href="https://site.manheim.com/en/locations/us-locations/manheim-ohio.html">More</a></div>
</div></body></html>`

func mustDoc(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 3, TotalPages(mustDoc(t, cardsPage)))
	assert.Equal(t, 1, TotalPages(mustDoc(t, headingsPage)))
}

func TestParseLocationsPageCards(t *testing.T) {
	locs := ParseLocationsPage(mustDoc(t, cardsPage), DefaultBaseURL)
	require.Len(t, locs, 2)

	assert.Equal(t, domain.AuctionLocation{
		Name:          "Manheim Dallas",
		AddressStreet: "5333 W Kiest Blvd",
		City:          "Dallas",
		State:         "TX",
		Zip:           "75236",
		Phone:         "(214) 330-1800",
		Website:       "https://site.manheim.com/en/locations/us-locations/manheim-dallas.html",
	}, locs[0])

	assert.Equal(t, "Manheim Phoenix", locs[1].Name)
	assert.Equal(t, "3420 S 48th St", locs[1].AddressStreet)
	assert.Equal(t, "Phoenix", locs[1].City)
	assert.Equal(t, "AZ", locs[1].State)
	assert.Equal(t, "85040", locs[1].Zip)
	assert.Equal(t, "602.437.7000", locs[1].Phone)
	assert.Empty(t, locs[1].Website)
}

func TestParseLocationsPageHeadingsFallback(t *testing.T) {
	locs := ParseLocationsPage(mustDoc(t, headingsPage), DefaultBaseURL)
	require.Len(t, locs, 2)

	assert.Equal(t, "Manheim Nevada", locs[0].Name)
	assert.Equal(t, "1 Auction Way", locs[0].AddressStreet)
	assert.Equal(t, "Reno", locs[0].City)
	assert.Equal(t, "NV", locs[0].State)
	assert.Empty(t, locs[0].Website)

	assert.Equal(t, "Manheim Ohio", locs[1].Name)
	assert.Empty(t, locs[1].AddressStreet)
	assert.Equal(t, "Columbus", locs[1].City)
	assert.Equal(t, "43228", locs[1].Zip)
	assert.Equal(t, "https://site.manheim.com/en/locations/us-locations/manheim-ohio.html", locs[1].Website)
}

func TestParseCityStateZip(t *testing.T) {
	city, state, zip, street := parseCityStateZip([]string{"Building 4", "100 Main St", "St. Louis, MO 63101-1234"})
	assert.Equal(t, "St. Louis", city)
	assert.Equal(t, "MO", state)
	assert.Equal(t, "63101-1234", zip)
	assert.Equal(t, "Building 4, 100 Main St", street)

	city, state, zip, street = parseCityStateZip([]string{"Somewhere", "Unknown"})
	assert.Empty(t, city+state+zip)
	assert.Equal(t, "Somewhere, Unknown", street)
}

func TestClean(t *testing.T) {
	assert.Equal(t, "A & B street", clean("  \"A &amp; B \n street\" "))
}
