package sqlinline

// Records holds every collection document for the Postgres remote backend.
// seq preserves insertion order for listing.
const QRecordsEnsureSchema = `--sql 6b1f3c0e-9a4d-4f2e-8c71-2d5e0b9a7f13
create table if not exists records (
  seq bigserial primary key,
  collection text not null,
  id text not null,
  body jsonb not null,
  created_at timestamptz not null default now(),
  unique (collection, id)
);
`

const QRecordsPing = `--sql 0c9e7d52-41b8-4a36-9f0d-7e3a1c5b8d24
select 1;
`

const QRecordsList = `--sql 3a7d2f81-6c0e-4b95-a1e4-58f2c9d07b36
select body
from records
where collection = $1
order by seq;
`

const QRecordsInsert = `--sql 9e4b1a07-d35c-4f68-b2a9-1c7e6f0d5a48
insert into records (collection, id, body)
values ($1, $2, $3::jsonb)
on conflict (collection, id) do nothing;
`

const QRecordsMerge = `--sql 5d2c8e16-7f4a-4b03-9e5d-a6b1f3c7e059
update records
set body = body || $3::jsonb
where collection = $1 and id = $2;
`

const QRecordsDelete = `--sql c81f0a3e-2b6d-4e97-8a45-f9d3b7e1c260
delete from records
where collection = $1 and id = $2;
`
