package sqlinline

const userColumns = `id, email, password_hash, coalesce(google_sub, ''), role, verification, review_note, locale, properties, created_at, updated_at`

const QInsertUser = `--sql 3c1db5f9-30ef-46cc-a75e-cce6a7ec05ee
insert into users (id, email, password_hash, role, verification, locale, properties, created_at, updated_at)
values ($1::uuid, lower($2::text), $3::text, $4::text, $5::text, $6::text, coalesce($7::jsonb, '{}'::jsonb), now(), now())
returning created_at, updated_at;
`

const QUpsertGoogleUser = `--sql 2a13c169-0132-49a6-9953-59d6084ff85e
with incoming as (
    select
        $1::text as google_sub,
        lower($2::text) as email,
        $3::text as name,
        $4::text as locale
)
insert into users (id, email, password_hash, google_sub, role, verification, locale, properties, created_at, updated_at)
values (
    gen_random_uuid(),
    (select email from incoming),
    '',
    (select google_sub from incoming),
    'donor',
    'approved',
    (select locale from incoming),
    jsonb_build_object('full_name', (select name from incoming)),
    now(),
    now()
)
on conflict (email) do update set
    google_sub = excluded.google_sub,
    locale = excluded.locale,
    properties = case
        when users.properties ? 'full_name' then users.properties
        else users.properties || excluded.properties
    end,
    updated_at = now()
returning ` + userColumns + `;
`

const QSelectUserByID = `--sql eea43196-4bf4-4845-ad7e-d3b8ae152407
select ` + userColumns + `
from users
where id = $1::uuid
limit 1;
`

const QSelectUserByEmail = `--sql b9d50b8d-6e78-435b-b3e0-ff43c9920ab9
select ` + userColumns + `
from users
where email = lower($1::text)
limit 1;
`

const QListUsersByVerification = `--sql 89e1e1ea-a315-445c-9ae3-d8d89b349412
select ` + userColumns + `
from users
where verification = $1::text
order by updated_at asc
limit $2::int offset $3::int;
`

const QUpdateUserVerification = `--sql 7f08294e-8cc4-453e-9213-7c0b7205a38c
update users
set verification = $3::text,
    review_note = $4::text,
    updated_at = now()
where id = $1::uuid
  and verification = $2::text
returning ` + userColumns + `;
`

const QUpdateUserRole = `--sql ec88b679-2857-4161-8465-c8844ac9a1a3
update users
set role = $2::text,
    updated_at = now()
where id = $1::uuid
returning ` + userColumns + `;
`
