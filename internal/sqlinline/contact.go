package sqlinline

const QInsertContactRequest = `--sql 43284dce-b445-4c38-84fc-274f905002f7
insert into contact_requests (id, name, email, subject, message, status, created_at, updated_at)
values (gen_random_uuid(), $1::text, lower($2::text), $3::text, $4::text, 'open', now(), now())
returning id, created_at;
`

const QListContactRequests = `--sql 8c816354-81ab-4833-80c4-e4492967606b
select id, name, email, subject, message, status, created_at
from contact_requests
where ($1::text = '' or status = $1::text)
order by created_at desc
limit $2::int offset $3::int;
`

const QResolveContactRequest = `--sql 9c094891-0f86-486d-96b8-7bbd199b91d3
update contact_requests
set status = 'resolved',
    updated_at = now()
where id = $1::uuid
  and status = 'open';
`
