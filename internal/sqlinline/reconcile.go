package sqlinline

const QFindCounterDrift = `--sql a803671b-d7ae-4d6a-90c9-a8da827f4c5e
select c.id, c.raised_amount, c.donor_count, coalesce(l.total, 0)::bigint, coalesce(l.cnt, 0)::bigint, c.goal_amount, c.status
from campaigns c
left join (
    select campaign_id, sum(amount_int) as total, count(*) as cnt
    from donations
    group by campaign_id
) l on l.campaign_id = c.id
where c.raised_amount <> coalesce(l.total, 0)
   or c.donor_count <> coalesce(l.cnt, 0)
order by c.updated_at asc
limit $1::int;
`

const QApplyLedger = `--sql 529e4d07-a612-4190-8f9f-ac49b4f124f4
update campaigns c
set raised_amount = l.total,
    donor_count = l.cnt,
    status = case
        when c.status = 'active' and c.goal_amount > 0 and l.total >= c.goal_amount then 'completed'
        else c.status
    end,
    updated_at = now()
from (
    select coalesce(sum(amount_int), 0)::bigint as total, count(*)::bigint as cnt
    from donations
    where campaign_id = $1::uuid
) l
where c.id = $1::uuid
returning c.id, c.owner_id, c.title, c.summary, c.story, c.category, c.image_url, c.currency, c.goal_amount, c.raised_amount, c.donor_count, c.status, c.review_note, c.ends_at, c.created_at, c.updated_at;
`

const QCompleteFundedCampaigns = `--sql 885ed6e1-8253-4100-9835-abfe29f169ae
update campaigns
set status = 'completed',
    updated_at = now()
where status = 'active'
  and goal_amount > 0
  and raised_amount >= goal_amount
returning ` + CampaignColumns + `;
`

const QCloseExpiredCampaigns = `--sql c79ea916-ab93-4d7f-8ce2-482efba46359
update campaigns
set status = 'closed',
    review_note = 'campaign end date passed',
    updated_at = now()
where status = 'active'
  and ends_at is not null
  and ends_at < now()
returning ` + CampaignColumns + `;
`
