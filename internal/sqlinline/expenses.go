package sqlinline

// QLockCampaignFunds must run inside a transaction; it serialises expense
// inserts for one campaign.
const QLockCampaignFunds = `--sql 015caa99-3f7b-4dbb-ac35-57961aed568c
select raised_amount
from campaigns
where id = $1::uuid
for update;
`

const QSumExpenses = `--sql 20244aa5-2913-4278-a0f5-dfee738b4654
select coalesce(sum(amount_int), 0)::bigint
from expenses
where campaign_id = $1::uuid;
`

const QInsertExpense = `--sql c0f3b33a-0ff5-4288-9ad8-2624d6d2ba7f
insert into expenses (id, campaign_id, amount_int, description, receipt_key, receipt_mime, spent_on, created_at)
values ($1::uuid, $2::uuid, $3::bigint, $4::text, $5::text, $6::text, $7::date, now())
returning created_at;
`

const QListExpensesByCampaign = `--sql cabc5377-a81c-46dd-9b00-e3279b82a874
select id, campaign_id, amount_int, description, receipt_key, receipt_mime, spent_on, created_at
from expenses
where campaign_id = $1::uuid
order by spent_on desc, created_at desc;
`
