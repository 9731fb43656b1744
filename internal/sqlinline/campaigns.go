package sqlinline

// CampaignColumns is the projection every campaign query returns, in the
// order the repository scans it.
const CampaignColumns = `id, owner_id, title, summary, story, category, image_url, currency, goal_amount, raised_amount, donor_count, status, review_note, ends_at, created_at, updated_at`

const QInsertCampaign = `--sql e9abbd52-4d82-4e64-9500-178af2671a83
insert into campaigns (id, owner_id, title, summary, story, category, image_url, currency, goal_amount, raised_amount, donor_count, status, review_note, ends_at, properties, created_at, updated_at)
values ($1::uuid, $2::uuid, $3::text, $4::text, $5::text, $6::text, $7::text, $8::text, $9::bigint, 0, 0, $10::text, '', $11::timestamptz, '{}'::jsonb, now(), now())
returning created_at, updated_at;
`

const QSelectCampaignByID = `--sql e1ea5651-923e-4ead-a5c0-70fd38dcbb70
select ` + CampaignColumns + `
from campaigns
where id = $1::uuid
limit 1;
`

const QListCampaigns = `--sql 0b30a897-d522-411e-97ae-e3ce84ec7b47
select ` + CampaignColumns + `
from campaigns
where ($1::text = '' or status = $1::text)
  and ($2::text = '' or category = $2::text)
  and ($3::text = '' or owner_id = nullif($3::text, '')::uuid)
  and ($4::text = '' or title ilike '%' || $4::text || '%' or summary ilike '%' || $4::text || '%')
order by created_at desc
limit $5::int offset $6::int;
`

const QUpdateCampaign = `--sql d453b949-fa4c-4828-ae4a-17f4c32c6de5
update campaigns
set title = $2::text,
    summary = $3::text,
    story = $4::text,
    image_url = $5::text,
    goal_amount = $6::bigint,
    ends_at = $7::timestamptz,
    status = case
        when status = 'active' and $6::bigint > 0 and raised_amount >= $6::bigint then 'completed'
        else status
    end,
    updated_at = now()
where id = $1::uuid
  and status in ('pending_review', 'active')
returning status, updated_at;
`

const QTransitionCampaign = `--sql 8bac8a18-d002-49ff-9bbc-9c918320a754
update campaigns
set status = $3::text,
    review_note = $4::text,
    updated_at = now()
where id = $1::uuid
  and status = any($2::text[])
returning ` + CampaignColumns + `;
`
