package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimitMiddleware implements multi-level rate limiting: per second, per
// day, and per month, each tracked with its own Redis counter.
func RateLimitMiddleware(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		partner, ok := c.Locals("partner").(*PartnerContext)
		if !ok {
			return c.Next()
		}

		rateLimits, ok := c.Locals("rate_limits").(map[string]int)
		if !ok {
			rateLimits = map[string]int{
				"per_second": 10,
				"per_day":    10000,
				"per_month":  300000,
			}
		}

		ctx := context.Background()
		now := time.Now()

		keySecond := fmt.Sprintf("rl:partner:%s:second:%d", partner.PartnerID, now.Unix())
		keyDay := fmt.Sprintf("rl:partner:%s:day:%s", partner.PartnerID, now.Format("2006-01-02"))
		keyMonth := fmt.Sprintf("rl:partner:%s:month:%s", partner.PartnerID, now.Format("2006-01"))

		if rateLimits["per_second"] > 0 {
			countSecond, err := rdb.Incr(ctx, keySecond).Result()
			if err == nil {
				rdb.Expire(ctx, keySecond, 2*time.Second)
				if countSecond > int64(rateLimits["per_second"]) {
					c.Set("X-RateLimit-Limit-Second", strconv.Itoa(rateLimits["per_second"]))
					c.Set("X-RateLimit-Remaining-Second", "0")
					c.Set("Retry-After", "1")
					return c.Status(429).JSON(fiber.Map{
						"error":       "rate_limit_exceeded",
						"limit_type":  "per_second",
						"limit":       rateLimits["per_second"],
						"retry_after": 1,
					})
				}
			}
		}

		if rateLimits["per_day"] > 0 {
			countDay, err := rdb.Incr(ctx, keyDay).Result()
			if err == nil {
				rdb.Expire(ctx, keyDay, 25*time.Hour)
				if countDay > int64(rateLimits["per_day"]) {
					tomorrow := now.AddDate(0, 0, 1)
					midnight := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, tomorrow.Location())
					retryAfter := int64(midnight.Sub(now).Seconds())

					c.Set("X-RateLimit-Limit-Day", strconv.Itoa(rateLimits["per_day"]))
					c.Set("X-RateLimit-Remaining-Day", "0")
					c.Set("Retry-After", strconv.FormatInt(retryAfter, 10))
					return c.Status(429).JSON(fiber.Map{
						"error":       "daily_quota_exceeded",
						"limit_type":  "per_day",
						"limit":       rateLimits["per_day"],
						"used":        countDay,
						"retry_after": retryAfter,
					})
				}
				c.Set("X-RateLimit-Remaining-Day", strconv.FormatInt(int64(rateLimits["per_day"])-countDay, 10))
			}
		}

		if rateLimits["per_month"] > 0 {
			countMonth, err := rdb.Incr(ctx, keyMonth).Result()
			if err == nil {
				rdb.Expire(ctx, keyMonth, 32*24*time.Hour)
				if countMonth > int64(rateLimits["per_month"]) {
					firstDayNextMonth := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
					retryAfter := int64(firstDayNextMonth.Sub(now).Seconds())

					c.Set("X-RateLimit-Limit-Month", strconv.Itoa(rateLimits["per_month"]))
					c.Set("X-RateLimit-Remaining-Month", "0")
					c.Set("Retry-After", strconv.FormatInt(retryAfter, 10))
					return c.Status(429).JSON(fiber.Map{
						"error":       "monthly_quota_exceeded",
						"limit_type":  "per_month",
						"limit":       rateLimits["per_month"],
						"used":        countMonth,
						"retry_after": retryAfter,
					})
				}
				c.Set("X-RateLimit-Remaining-Month", strconv.FormatInt(int64(rateLimits["per_month"])-countMonth, 10))
			}
		}

		c.Set("X-RateLimit-Limit-Second", strconv.Itoa(rateLimits["per_second"]))
		c.Set("X-RateLimit-Limit-Day", strconv.Itoa(rateLimits["per_day"]))
		c.Set("X-RateLimit-Limit-Month", strconv.Itoa(rateLimits["per_month"]))

		return c.Next()
	}
}

func getCurrentCount(ctx context.Context, rdb *redis.Client, key string) int64 {
	val, err := rdb.Get(ctx, key).Int64()
	if err != nil {
		return 0
	}
	return val
}

// ResetRateLimit resets a partner's counter for one period (admin function).
func ResetRateLimit(rdb *redis.Client, partnerID string, period string) error {
	ctx := context.Background()
	now := time.Now()

	var key string
	switch period {
	case "second":
		key = fmt.Sprintf("rl:partner:%s:second:%d", partnerID, now.Unix())
	case "day":
		key = fmt.Sprintf("rl:partner:%s:day:%s", partnerID, now.Format("2006-01-02"))
	case "month":
		key = fmt.Sprintf("rl:partner:%s:month:%s", partnerID, now.Format("2006-01"))
	default:
		return fmt.Errorf("invalid period: %s", period)
	}
	return rdb.Del(ctx, key).Err()
}

// GetRateLimitStatus reports a partner's current usage against its limits.
func GetRateLimitStatus(rdb *redis.Client, partnerID string, rateLimits map[string]int) map[string]interface{} {
	ctx := context.Background()
	now := time.Now()

	keySecond := fmt.Sprintf("rl:partner:%s:second:%d", partnerID, now.Unix())
	keyDay := fmt.Sprintf("rl:partner:%s:day:%s", partnerID, now.Format("2006-01-02"))
	keyMonth := fmt.Sprintf("rl:partner:%s:month:%s", partnerID, now.Format("2006-01"))

	countSecond := getCurrentCount(ctx, rdb, keySecond)
	countDay := getCurrentCount(ctx, rdb, keyDay)
	countMonth := getCurrentCount(ctx, rdb, keyMonth)

	return map[string]interface{}{
		"second": map[string]interface{}{
			"limit": rateLimits["per_second"], "used": countSecond,
			"remaining": maxInt64(0, int64(rateLimits["per_second"])-countSecond),
		},
		"day": map[string]interface{}{
			"limit": rateLimits["per_day"], "used": countDay,
			"remaining": maxInt64(0, int64(rateLimits["per_day"])-countDay),
		},
		"month": map[string]interface{}{
			"limit": rateLimits["per_month"], "used": countMonth,
			"remaining": maxInt64(0, int64(rateLimits["per_month"])-countMonth),
		},
	}
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
