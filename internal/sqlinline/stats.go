package sqlinline

const QStatsSummary = `--sql 320e06b1-556c-41ff-972c-ae0edb092fe8
select
    coalesce((select sum(raised_amount) from campaigns), 0)::bigint as total_raised,
    (select count(*) from campaigns where status = 'active')::bigint as active_campaigns,
    (select count(*) from campaigns where status = 'completed')::bigint as completed_campaigns,
    (select count(distinct donor_id) from donations where donor_id is not null)::bigint as donors,
    (select count(*) from donations)::bigint as donations;
`
