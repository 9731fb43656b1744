package sqlinline

const QInsertDocument = `--sql db6638a1-ecb0-468e-9a56-9ad91ed076b1
insert into verification_documents (id, user_id, kind, storage_key, mime, bytes, created_at)
values ($1::uuid, $2::uuid, $3::text, $4::text, $5::text, $6::bigint, now())
returning created_at;
`

const QListDocumentsByUser = `--sql 028b9e1b-7643-475b-8aca-ef925ec1bc8f
select id, user_id, kind, storage_key, mime, bytes, created_at
from verification_documents
where user_id = $1::uuid
order by created_at desc;
`
