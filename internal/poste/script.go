package poste

// bulkCreateScript is uploaded into the container and executed with
// `<domain> <csv-file>`. It boots the admin application's framework once
// and loops over the user list in-process, which is far cheaper than one
// console process per account. Invoked with --probe it only verifies the
// bootstrap works; on an incompatible admin build it prints the fallback
// sentinel and exits non-zero, which switches provisioning to the
// parallel worker strategy.
const bulkCreateScript = `<?php
// Bulk account creation for postefleet. Usage:
//   php bulk_create.php --probe
//   php bulk_create.php <domain> <csv-file>
// CSV columns: email,password,full_name
// Prints a trailing "SUCCESS_COUNT|FAILED_COUNT" line.

error_reporting(E_ERROR);

if (!file_exists('/admin/vendor/autoload.php') || !file_exists('/admin/src/Base/Kernel.php')) {
    fwrite(STDOUT, "FALLBACK_NEEDED\n");
    exit(2);
}

require '/admin/vendor/autoload.php';

use App\Base\Kernel;
use Symfony\Component\Console\Input\ArrayInput;
use Symfony\Component\Console\Output\NullOutput;
use Symfony\Bundle\FrameworkBundle\Console\Application;

if (!class_exists(Kernel::class)) {
    fwrite(STDOUT, "FALLBACK_NEEDED\n");
    exit(2);
}

$kernel = new Kernel('prod', false);
$kernel->boot();
$application = new Application($kernel);
$application->setAutoExit(false);

if (($argv[1] ?? '') === '--probe') {
    fwrite(STDOUT, "PROBE_OK\n");
    exit(0);
}

$domain = $argv[1] ?? '';
$csv = $argv[2] ?? '';
if ($domain === '' || !is_readable($csv)) {
    fwrite(STDERR, "usage: bulk_create.php <domain> <csv-file>\n");
    exit(1);
}

$ok = 0;
$bad = 0;
$handle = fopen($csv, 'r');
while (($row = fgetcsv($handle)) !== false) {
    if (count($row) < 3) {
        $bad++;
        continue;
    }
    [$email, $password, $fullName] = $row;
    $input = new ArrayInput([
        'command'  => 'email:create',
        'address'  => $email,
        'password' => $password,
        'name'     => $fullName,
    ]);
    try {
        $code = $application->run($input, new NullOutput());
        $code === 0 ? $ok++ : $bad++;
    } catch (\Throwable $e) {
        $bad++;
    }
}
fclose($handle);

fwrite(STDOUT, $ok . "|" . $bad . "\n");
`
