package sqlinline

// CampaignEventsChannel is the NOTIFY channel campaign events travel on.
const CampaignEventsChannel = "campaign_events"

const QNotifyCampaignEvent = `--sql 6f0c2e57-1b8d-4a3e-9c71-d24f8b0e5a19
select pg_notify($1::text, $2::text);
`
