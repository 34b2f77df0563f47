package gallery

import (
	"fmt"
	"net/url"
	"strings"

	"rewind-backend/internal/models"
)

const warpcastCompose = "https://warpcast.com/~/compose"

// FrameURL is the public frame page for a coin.
func FrameURL(baseURL, coinAddress string) string {
	return strings.TrimSuffix(baseURL, "/") + "/frames/" + url.PathEscape(coinAddress)
}

// ShareURL is a Warpcast compose link that embeds the memory's frame.
func ShareURL(baseURL string, rec models.MemoryRecord) string {
	q := url.Values{}
	q.Set("text", fmt.Sprintf("Check out this memory on Rewind: %q", rec.Title))
	q.Add("embeds[]", FrameURL(baseURL, rec.CoinAddress))
	return warpcastCompose + "?" + q.Encode()
}

// TipShareURL is a Warpcast compose link announcing a tip.
func TipShareURL(amount float64, rec models.MemoryRecord) string {
	q := url.Values{}
	q.Set("text", fmt.Sprintf("I just tipped %s to %s on Rewind! Check it out: %s",
		formatAmount(amount), rec.Title, rec.ExplorerURL))
	return warpcastCompose + "?" + q.Encode()
}

func formatAmount(amount float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", amount), "0"), ".")
}
