package query

// Fixed statement templates. Placeholders are positional ("?"); the window
// bound is the only value that changes between calls, plus the experiment key
// and row limit where noted.
const (
	dailyFunnelSQL = `
SELECT
  to_char(date(event_ts), 'YYYY-MM-DD') AS day,
  SUM((event_name = 'view')::int) AS views,
  SUM((event_name = 'add_to_cart')::int) AS adds,
  SUM((event_name = 'purchase')::int) AS purchases
FROM fct_events
WHERE event_ts >= ?
GROUP BY date(event_ts)
ORDER BY date(event_ts) ASC
`

	trafficSourceSQL = `
WITH sessions AS (
  SELECT
    u.traffic_source,
    e.user_id,
    e.session_id,
    MAX((e.event_name = 'view')::int) AS v,
    MAX((e.event_name = 'add_to_cart')::int) AS a,
    MAX((e.event_name = 'purchase')::int) AS p
  FROM fct_events e
  JOIN dim_user u USING (user_id)
  WHERE e.event_ts >= ?
  GROUP BY 1, 2, 3
)
SELECT
  traffic_source,
  SUM(v) AS views,
  SUM(a) AS adds,
  SUM(p) AS purchases
FROM sessions
GROUP BY traffic_source
ORDER BY purchases DESC, adds DESC, traffic_source ASC
`

	experimentSQL = `
WITH conv AS (
  SELECT
    variant,
    COUNT(DISTINCT user_id) AS n,
    COUNT(DISTINCT CASE WHEN event_name = 'purchase' THEN user_id END) AS x
  FROM fct_events
  WHERE experiment_key = ?
    AND variant IS NOT NULL
    AND event_ts >= ?
  GROUP BY variant
)
SELECT
  (SELECT n FROM conv WHERE variant = 'A') AS n_a,
  (SELECT x FROM conv WHERE variant = 'A') AS x_a,
  (SELECT n FROM conv WHERE variant = 'B') AS n_b,
  (SELECT x FROM conv WHERE variant = 'B') AS x_b
`

	revenueSQL = `
SELECT
  to_char(date(order_ts), 'YYYY-MM-DD') AS day,
  ROUND(SUM(total)::numeric, 2) AS revenue
FROM fct_orders
WHERE order_ts >= ?
GROUP BY date(order_ts)
ORDER BY date(order_ts) ASC
`

	categorySQL = `
SELECT
  p.category,
  COUNT(*) AS purchases,
  ROUND(AVG(p.price)::numeric, 2) AS avg_price
FROM fct_events e
JOIN dim_product p USING (product_id)
WHERE e.event_name = 'purchase'
  AND e.event_ts >= ?
GROUP BY p.category
ORDER BY purchases DESC, p.category ASC
`

	topProductsSQL = `
SELECT
  p.product_id::text AS product_id,
  p.category,
  COUNT(*) AS purchases,
  ROUND(SUM(p.price)::numeric, 2) AS revenue
FROM fct_events e
JOIN dim_product p USING (product_id)
WHERE e.event_name = 'purchase'
  AND e.event_ts >= ?
GROUP BY p.product_id, p.category
ORDER BY purchases DESC, revenue DESC, p.product_id ASC
LIMIT ?
`

	// First-seen days span all history. Touches start at the bound, which callers
	// align to the Monday of the oldest cohort week.
	retentionSQL = `
WITH first_seen AS (
  SELECT user_id, MIN(date(event_ts)) AS first_seen_day
  FROM fct_events
  GROUP BY user_id
),
touches AS (
  SELECT DISTINCT user_id, date(event_ts) AS active_day
  FROM fct_events
  WHERE event_ts >= ?
)
SELECT
  t.user_id::text AS user_id,
  f.first_seen_day,
  t.active_day
FROM touches t
JOIN first_seen f USING (user_id)
ORDER BY t.user_id, t.active_day
`
)
