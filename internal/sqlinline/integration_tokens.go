package sqlinline

const QSelectIntegrationToken = `--sql 7c14ed01-9862-4082-a642-2f300d295244
select token
from integration_tokens
where provider = $1::text
limit 1;
`

const QUpsertIntegrationToken = `--sql f20f9752-4b24-4c7a-a1f7-60e786f33d25
insert into integration_tokens (id, provider, token, properties, created_at, updated_at)
values (gen_random_uuid(), $1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb), now(), now())
on conflict (provider) do update set
    token = excluded.token,
    properties = excluded.properties,
    updated_at = now();
`
