package sqlinline

// QRecordDonation bumps the campaign counters and inserts the donation in a
// single statement. The update only matches active campaigns, so an empty
// result means the campaign is missing or closed to donations.
const QRecordDonation = `--sql 1c8d363f-4079-4dfc-94fe-37b6d6482ceb
with bumped as (
    update campaigns
    set raised_amount = raised_amount + $2::bigint,
        donor_count = donor_count + 1,
        status = case
            when goal_amount > 0 and raised_amount + $2::bigint >= goal_amount then 'completed'
            else status
        end,
        updated_at = now()
    where id = $1::uuid
      and status = 'active'
    returning ` + CampaignColumns + `
),
inserted as (
    insert into donations (id, campaign_id, donor_id, amount_int, message, anonymous, country, properties, created_at)
    select gen_random_uuid(), b.id, nullif($3::text, '')::uuid, $2::bigint, $4::text, $5::bool, $6::text, '{}'::jsonb, now()
    from bumped b
    returning id, created_at
)
select i.id, i.created_at, b.*
from inserted i
cross join bumped b;
`

const QListDonationsByCampaign = `--sql 2990bedf-5827-4f02-9db0-12afdca94053
select id, campaign_id, donor_id::text, amount_int, message, anonymous, country, created_at
from donations
where campaign_id = $1::uuid
order by created_at desc
limit $2::int offset $3::int;
`

const QListDonationsByDonor = `--sql ccf796de-783b-4ef3-97c0-101932b5e340
select id, campaign_id, donor_id::text, amount_int, message, anonymous, country, created_at
from donations
where donor_id = $1::uuid
order by created_at desc
limit $2::int offset $3::int;
`
