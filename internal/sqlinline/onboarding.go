package sqlinline

const QInsertOnboardingSession = `--sql c77d7a84-88f4-4b09-a9fa-328ebf063ab8
insert into onboarding_sessions (id, email, password_hash, role, step, properties, documents, expires_at, created_at, updated_at)
values ($1::uuid, lower($2::text), $3::text, $4::text, $5::text, '{}'::jsonb, '{}'::jsonb, $6::timestamptz, now(), now())
returning created_at, updated_at;
`

const QSelectOnboardingSession = `--sql f079b7e2-fde1-4c5a-a0fa-917aef2edb57
select id, email, password_hash, role, step, properties, documents, coalesce(user_id::text, ''), expires_at, created_at, updated_at
from onboarding_sessions
where id = $1::uuid
limit 1;
`

const QUpdateOnboardingSession = `--sql 5e4d907f-2621-41cc-9445-a1e67b35c3a7
update onboarding_sessions
set step = $2::text,
    properties = coalesce($3::jsonb, '{}'::jsonb),
    documents = coalesce($4::jsonb, '{}'::jsonb),
    user_id = nullif($5::text, '')::uuid,
    updated_at = now()
where id = $1::uuid
returning updated_at;
`
