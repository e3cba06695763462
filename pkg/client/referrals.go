package client

import (
	"context"
	"net/http"
)

// ReferralStats returns the referral statistics of the account.
func (c *Client) ReferralStats(ctx context.Context) (any, error) {
	return c.call(ctx, request{op: "referral.getStats", method: http.MethodGet, path: "/referrals/stats"})
}
